package voiceclient

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const bytesPerSample = 2

type Config struct {
	RelayURL     string        `env:"VOICE_RELAY_URL" env-default:"ws://localhost:8000/ws"`
	SampleRate   int           `env:"VOICE_SAMPLE_RATE" env-default:"16000"`
	FrameSamples int           `env:"VOICE_FRAME_SAMPLES" env-default:"1600"`
	PollTimeout  time.Duration `env:"VOICE_POLL_TIMEOUT" env-default:"100ms"`
	InputDevice  string        `env:"VOICE_INPUT_DEVICE"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.SampleRate <= 0 || cfg.FrameSamples <= 0 || cfg.PollTimeout <= 0 {
		return nil, fmt.Errorf("invalid audio settings: sample rate %d, frame %d samples, poll %s",
			cfg.SampleRate, cfg.FrameSamples, cfg.PollTimeout)
	}
	return &cfg, nil
}

// FrameBytes is the size of one s16le mono frame.
func (c *Config) FrameBytes() int {
	return c.FrameSamples * bytesPerSample
}
