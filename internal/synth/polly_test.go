package synth

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/lexicc/lexicc/internal/tts"
)

type fakeAPI struct {
	input    *polly.SynthesizeSpeechInput
	audio    string
	nilBody  bool
	err      error
	deadline bool
	block    bool
}

func (f *fakeAPI) SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.input = params
	_, f.deadline = ctx.Deadline()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.nilBody {
		return &polly.SynthesizeSpeechOutput{}, nil
	}
	return &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(strings.NewReader(f.audio)),
	}, nil
}

func TestSynthesize_RequestShape(t *testing.T) {
	api := &fakeAPI{audio: "OggS-audio"}
	p := New(api, Config{})

	audio, err := p.Synthesize(context.Background(), "<speak>hi</speak>")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "OggS-audio" {
		t.Errorf("audio = %q", audio)
	}

	in := api.input
	if aws.ToString(in.Text) != "<speak>hi</speak>" {
		t.Errorf("Text = %q", aws.ToString(in.Text))
	}
	if in.OutputFormat != OutputFormat {
		t.Errorf("OutputFormat = %v", in.OutputFormat)
	}
	if in.VoiceId != Voice {
		t.Errorf("VoiceId = %v", in.VoiceId)
	}
	if in.Engine != Engine {
		t.Errorf("Engine = %v", in.Engine)
	}
	if in.TextType != TextType {
		t.Errorf("TextType = %v", in.TextType)
	}
	if aws.ToString(in.SampleRate) != "24000" {
		t.Errorf("SampleRate = %q", aws.ToString(in.SampleRate))
	}
	if api.deadline {
		t.Error("no deadline expected when timeout is zero")
	}
}

func TestSynthesize_SampleRate(t *testing.T) {
	api := &fakeAPI{audio: "OggS-audio"}
	p := New(api, Config{SampleRate: 16000})

	if _, err := p.Synthesize(context.Background(), "<speak>hi</speak>"); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(api.input.SampleRate) != "16000" {
		t.Errorf("SampleRate = %q", aws.ToString(api.input.SampleRate))
	}
	if p.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d", p.SampleRate())
	}
}

func TestSynthesize_Errors(t *testing.T) {
	serviceErr := errors.New("ThrottlingException")

	tests := []struct {
		name  string
		api   *fakeAPI
		cause error
	}{
		{"service failure", &fakeAPI{err: serviceErr}, serviceErr},
		{"no stream", &fakeAPI{nilBody: true}, tts.ErrEmptyAudio},
		{"empty stream", &fakeAPI{audio: ""}, tts.ErrEmptyAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.api, Config{}).Synthesize(context.Background(), "<speak/>")
			if !errors.Is(err, tt.cause) {
				t.Errorf("error = %v, want %v in chain", err, tt.cause)
			}
		})
	}
}

func TestSynthesize_Timeout(t *testing.T) {
	api := &fakeAPI{block: true}
	p := New(api, Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := p.Synthesize(context.Background(), "<speak/>")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !api.deadline {
		t.Error("expected the request context to carry a deadline")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestSynthesize_RateLimitHonoursCancel(t *testing.T) {
	api := &fakeAPI{audio: "x"}
	p := New(api, Config{RequestsPerMinute: 1})

	if _, err := p.Synthesize(context.Background(), "<speak/>"); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Synthesize(ctx, "<speak/>"); err == nil {
		t.Error("expected the second call to fail waiting for the limiter")
	}
}
