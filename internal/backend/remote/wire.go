package remote

// JSON payloads exchanged with the sidecar.

type deviceResponse struct {
	Accelerator bool `json:"accelerator"`
}

type tokenizerRequest struct {
	Model   string `json:"model"`
	SrcLang string `json:"src_lang"`
	TgtLang string `json:"tgt_lang"`
}

type tokenizerResponse struct {
	Handle       string           `json:"handle"`
	LangCodeToID map[string]int64 `json:"lang_code_to_id,omitempty"`
}

type langIDRequest struct {
	Code string `json:"code"`
}

type langIDResponse struct {
	ID int64 `json:"id"`
}

type encodeRequest struct {
	Texts   []string `json:"texts"`
	Padding bool     `json:"padding"`
}

type encodeResponse struct {
	InputIDs [][]int64 `json:"input_ids"`
}

type decodeRequest struct {
	IDs               [][]int64 `json:"ids"`
	SkipSpecialTokens bool      `json:"skip_special_tokens"`
}

type decodeResponse struct {
	Texts []string `json:"texts"`
}

type modelRequest struct {
	Model      string `json:"model"`
	Kind       string `json:"kind"`
	DType      string `json:"dtype,omitempty"`
	LoadIn8Bit bool   `json:"load_in_8bit,omitempty"`
	LoadIn4Bit bool   `json:"load_in_4bit,omitempty"`
	DeviceMap  string `json:"device_map,omitempty"`
}

type modelResponse struct {
	Handle string `json:"handle"`
	Device string `json:"device"`
}

type toRequest struct {
	Device string `json:"device"`
}

type toResponse struct {
	Device string `json:"device"`
}

type generateResponse struct {
	OutputIDs [][]int64 `json:"output_ids"`
}
