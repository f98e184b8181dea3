package types

// Model represents a translation model the catalog knows how to load.
type Model struct {
	// Hub identifier of the pretrained model.
	// example: facebook/m2m100_418M
	ID string `json:"id" example:"facebook/m2m100_418M"`
	// Model family (mbart, mbart50, m2m100).
	// example: m2m100
	Family string `json:"family" example:"m2m100"`
	// Language-pair restriction (none, src-only, tgt-only, fixed-pair).
	// example: none
	Restriction string `json:"restriction" example:"none"`
	// Tokenizer class used by the backend.
	// example: M2M100Tokenizer
	Tokenizer string `json:"tokenizer" example:"M2M100Tokenizer"`
	// Model class used by the backend.
	// example: M2M100ForConditionalGeneration
	ModelKind string `json:"model_kind" example:"M2M100ForConditionalGeneration"`
	// Generation argument carrying the target language id.
	// example: forced_bos_token_id
	Control string `json:"control" example:"forced_bos_token_id"`
}

// Task is a named translation direction.
type Task struct {
	// example: wmt16-en-ro
	Name string `json:"name" example:"wmt16-en-ro"`
	// 5-character source code.
	// example: en_XX
	SrcLang string `json:"src_lang" example:"en_XX"`
	// 5-character target code.
	// example: ro_RO
	TgtLang string `json:"tgt_lang" example:"ro_RO"`
}
