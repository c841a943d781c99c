// Package synth calls Amazon Polly to turn SSML markup into Ogg Vorbis audio.
package synth

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/charmbracelet/log"
	"github.com/lexicc/lexicc/internal/tts"
	"golang.org/x/time/rate"
)

// Fixed request settings. Voice and engine are not configurable.
const (
	Voice        = types.VoiceIdJoanna
	Engine       = types.EngineNeural
	OutputFormat = types.OutputFormatOggVorbis
	TextType     = types.TextTypeSsml

	// DefaultSampleRate is the highest rate Polly offers for Ogg output.
	DefaultSampleRate = 24000

	// maxAudioSize guards against a runaway stream.
	maxAudioSize = 50 * 1024 * 1024
)

// SpeechAPI is the subset of the Polly client used here.
type SpeechAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// SupportedSampleRates lists the rates Polly accepts for Ogg Vorbis.
var SupportedSampleRates = []int{8000, 16000, 22050, 24000}

// Config holds client settings.
type Config struct {
	// SampleRate requested from Polly. Zero means DefaultSampleRate.
	SampleRate int

	// Timeout bounds a single synthesis call. Zero disables it.
	Timeout time.Duration

	// RequestsPerMinute paces calls. Zero means unlimited.
	RequestsPerMinute int
}

// Polly implements tts.Synthesizer against Amazon Polly.
type Polly struct {
	api         SpeechAPI
	sampleRate  int
	timeout     time.Duration
	rateLimiter *rate.Limiter
}

// New creates a Polly synthesizer around api.
func New(api SpeechAPI, config Config) *Polly {
	limit := rate.Inf
	if config.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(config.RequestsPerMinute))
	}
	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	return &Polly{
		api:         api,
		sampleRate:  sampleRate,
		timeout:     config.Timeout,
		rateLimiter: rate.NewLimiter(limit, 1),
	}
}

// NewFromEnv loads AWS credentials and region from the environment and
// shared config files.
func NewFromEnv(ctx context.Context, config Config) (*Polly, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debug("Loaded AWS config", "region", cfg.Region)
	return New(polly.NewFromConfig(cfg), config), nil
}

// SampleRate returns the rate of the audio this client produces.
func (p *Polly) SampleRate() int {
	return p.sampleRate
}

// Synthesize sends markup to Polly and returns the complete audio stream.
func (p *Polly) Synthesize(ctx context.Context, markup string) ([]byte, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	out, err := p.api.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		OutputFormat: OutputFormat,
		Text:         aws.String(markup),
		VoiceId:      Voice,
		Engine:       Engine,
		TextType:     TextType,
		SampleRate:   aws.String(strconv.Itoa(p.sampleRate)),
	})
	if err != nil {
		return nil, fmt.Errorf("polly request failed: %w", err)
	}
	if out.AudioStream == nil {
		return nil, tts.ErrEmptyAudio
	}
	defer out.AudioStream.Close()

	audio, err := io.ReadAll(io.LimitReader(out.AudioStream, maxAudioSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", err)
	}
	if len(audio) > maxAudioSize {
		return nil, fmt.Errorf("audio stream too large: more than %d bytes", maxAudioSize)
	}
	if len(audio) == 0 {
		return nil, tts.ErrEmptyAudio
	}

	return audio, nil
}

var _ tts.Synthesizer = (*Polly)(nil)
