// Package config loads rtpvoice settings from the environment.
//
// Variables use the RTPVOICE_ prefix. A .env file in the working directory is
// read first when present; variables already set in the environment win.
//
//	RTPVOICE_LOCAL_PORT=5004
//	RTPVOICE_REMOTE_HOST=127.0.0.1
//	RTPVOICE_REMOTE_PORT=5005
//	RTPVOICE_CHUNK_SIZE=1024
//	RTPVOICE_SAMPLE_RATE=8000
//	RTPVOICE_INPUT=silence
//	RTPVOICE_OUTPUT=discard
//	RTPVOICE_LOG_LEVEL=info
package config
