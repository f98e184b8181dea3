package translator

import "context"

// Device names a compute device understood by the backend.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// TokenIDs is a padded batch of token id rows.
type TokenIDs [][]int64

// DType selects the floating point precision of loaded weights.
// The empty value lets the backend use the checkpoint default (full precision).
type DType string

const (
	DTypeDefault  DType = ""
	DTypeFloat16  DType = "float16"
	DTypeBFloat16 DType = "bfloat16"
)

// LoadOptions captures the precision/quantization flags passed to LoadModel.
type LoadOptions struct {
	DType      DType
	LoadIn8Bit bool
	LoadIn4Bit bool
	// DeviceMap is "auto" when placement is delegated to the backend.
	DeviceMap string
}

// ControlArgs are extra generation arguments, keyed by argument name
// (decoder_start_token_id or forced_bos_token_id).
type ControlArgs map[string]int64

// Backend abstracts the pretrained-model library that owns tokenization,
// weights and generation. Implementations live outside this package
// (see internal/backend/remote).
type Backend interface {
	// AcceleratorAvailable reports whether a GPU-class device can be used.
	AcceleratorAvailable(ctx context.Context) (bool, error)
	// LoadTokenizer loads the tokenizer for modelID configured with the given codes.
	LoadTokenizer(ctx context.Context, modelID, srcLang, tgtLang string) (Tokenizer, error)
	// LoadModel loads weights using the model class kind (e.g. M2M100ForConditionalGeneration).
	LoadModel(ctx context.Context, kind, modelID string, opts LoadOptions) (Model, error)
}

// Tokenizer is a loaded tokenizer handle.
type Tokenizer interface {
	// EncodeBatch tokenizes texts as one batch padded to the longest row.
	EncodeBatch(ctx context.Context, texts []string) (TokenIDs, error)
	// DecodeBatch turns generated ids back into strings.
	DecodeBatch(ctx context.Context, ids TokenIDs, skipSpecial bool) ([]string, error)
	// LangID looks up a language token id by code (M2M100 tokenizers).
	LangID(ctx context.Context, code string) (int64, error)
	// LangCodeToID returns the code to id table (MBART/MBART50 tokenizers).
	LangCodeToID() map[string]int64
	// Close releases the tokenizer. The handle must not be used afterwards.
	Close(ctx context.Context) error
}

// Model is a loaded model handle.
type Model interface {
	// Device reports where the weights currently live.
	Device() Device
	// To moves the weights to d.
	To(ctx context.Context, d Device) error
	// Eval switches the model to inference mode.
	Eval(ctx context.Context) error
	// Generate runs generation over a padded batch.
	Generate(ctx context.Context, ids TokenIDs, args ControlArgs) (TokenIDs, error)
	// Close frees the weights.
	Close(ctx context.Context) error
}
