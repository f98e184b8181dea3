package translator

// QuantMode is the weight precision selected at load time.
type QuantMode string

const (
	QuantFull QuantMode = "full"
	QuantFP16 QuantMode = "fp16"
	QuantBF16 QuantMode = "bf16"
	Quant8Bit QuantMode = "bb8"
	Quant4Bit QuantMode = "bb4"
)

// ParseQuantMode maps a user flag to a QuantMode. Unknown values, including
// the empty string, select full precision.
func ParseQuantMode(s string) QuantMode {
	switch m := QuantMode(s); m {
	case QuantFP16, QuantBF16, Quant8Bit, Quant4Bit:
		return m
	default:
		return QuantFull
	}
}

// Quantized reports whether device placement is delegated to the backend.
func (m QuantMode) Quantized() bool { return m == Quant8Bit || m == Quant4Bit }

func (m QuantMode) loadOptions() LoadOptions {
	switch m {
	case QuantFP16:
		return LoadOptions{DType: DTypeFloat16}
	case QuantBF16:
		return LoadOptions{DType: DTypeBFloat16}
	case Quant8Bit:
		return LoadOptions{LoadIn8Bit: true, DeviceMap: "auto"}
	case Quant4Bit:
		return LoadOptions{LoadIn4Bit: true, DeviceMap: "auto"}
	default:
		return LoadOptions{}
	}
}

func (m QuantMode) banner() string {
	switch m {
	case QuantFP16:
		return "Declaring fp16 precision model"
	case QuantBF16:
		return "Declaring bf16 precision model"
	case Quant8Bit:
		return "Declaring 8-bit precision model"
	case Quant4Bit:
		return "Declaring 4-bit precision model"
	default:
		return "No model weight quantization selected. Loading in full-precision"
	}
}

func (m QuantMode) bits() string {
	if m == Quant8Bit {
		return "8-bit"
	}
	return "4-bit"
}
