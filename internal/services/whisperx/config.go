package whisperx

// Config selects the WhisperX model, device and voice activity detector.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" (default) or "pyannote". Pyannote needs HFToken.
	VADMethod string
	HFToken   string
	// Language pins the spoken language. Empty lets WhisperX detect it.
	Language   string
	SampleRate int
	// LockPath, when set, serializes transcriptions across processes.
	LockPath string
}

const (
	DefaultModel      = "large-v3-turbo"
	DefaultSampleRate = 16000

	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"

	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"
	CUDADevice   = "cuda"
	CPUDevice    = "cpu"

	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)

// decodeFlags are the fixed WhisperX decoding parameters, tuned for short
// single-speaker clips.
var decodeFlags = []string{
	"--batch_size", "4",
	"--output_format", "json",
	"--segment_resolution", "sentence",
	"--chunk_size", "15",
	"--vad_onset", "0.08",
	"--vad_offset", "0.07",
	"--beam_size", "5",
	"--temperature", "0.0",
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c Config) vadMethod() string {
	if c.VADMethod != "" {
		return c.VADMethod
	}
	return VADMethodSilero
}

func (c Config) sampleRate() int {
	if c.SampleRate > 0 {
		return c.SampleRate
	}
	return DefaultSampleRate
}
