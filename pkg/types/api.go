package types

// TranslateRequest represents a translation request payload.
type TranslateRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: facebook/m2m100_418M
	Model string `json:"model,omitempty" example:"facebook/m2m100_418M"`
	// Optional task name. If empty, the server default is used.
	// example: wmt16-en-de
	Task string `json:"task,omitempty" example:"wmt16-en-de"`
	// Weight precision: fp16, bf16, bb8, bb4; anything else loads full precision.
	// example: fp16
	Quantize string `json:"quantize,omitempty" example:"fp16"`
	// Source sentences.
	// example: ["Hello world"]
	Inputs []string `json:"inputs" example:"Hello world"`
	// If true, inputs are length-sorted and generated in chunks of 32.
	// Results are then streamed in sorted order; use index to restore input order.
	// example: false
	Offline bool `json:"offline,omitempty" example:"false"`
}

// TranslateLine is one NDJSON line of a /translate response.
type TranslateLine struct {
	// Position of the source sentence in the request inputs.
	// example: 0
	Index int `json:"index" example:"0"`
	// Decoded translation.
	// example: Hallo Welt
	Text string `json:"text" example:"Hallo Welt"`
}

// TranslateDone is the final NDJSON line of a /translate response.
type TranslateDone struct {
	Done  bool `json:"done" example:"true"`
	Count int  `json:"count" example:"1"`
}

// ResolveRequest asks for the language codes of a model/task pair.
type ResolveRequest struct {
	// example: facebook/m2m100_418M
	Model string `json:"model" example:"facebook/m2m100_418M"`
	// example: wmt16-ro-en
	Task string `json:"task" example:"wmt16-ro-en"`
}

// ResolveResponse carries the tokenizer codes for a model/task pair.
type ResolveResponse struct {
	// example: ro
	SrcLang string `json:"src_lang" example:"ro"`
	// example: en
	TgtLang string `json:"tgt_lang" example:"en"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of supported models.
	Models []Model `json:"models"`
}

// TasksResponse wraps the list of tasks returned by GET /tasks.
type TasksResponse struct {
	Tasks []Task `json:"tasks"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InstanceStatus summarizes a prepared translator for /status.
type InstanceStatus struct {
	// Instance key: model|task|quantize.
	// example: facebook/m2m100_418M|wmt16-en-de|fp16
	Key string `json:"key" example:"facebook/m2m100_418M|wmt16-en-de|fp16"`
	// example: facebook/m2m100_418M
	ModelID string `json:"model_id" example:"facebook/m2m100_418M"`
	// example: wmt16-en-de
	Task string `json:"task" example:"wmt16-en-de"`
	// Effective precision mode.
	// example: fp16
	Precision string `json:"precision" example:"fp16"`
	// Device the model weights ended up on.
	// example: cuda
	Device string `json:"device" example:"cuda"`
	// Current lifecycle state of the instance (loading, ready, error, draining).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this instance served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Current queue length for incoming requests.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of in-flight requests currently being processed.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests allowed before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Prepared translator instances.
	Instances []InstanceStatus `json:"instances"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of translator preparations.
	// example: 3
	LoadsTotal uint64 `json:"loads_total" example:"3"`
	// Overall manager state (e.g., loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Number of instances currently preparing.
	// example: 1
	WarmupsInProgress int `json:"warmups_in_progress" example:"1"`
}
