package wheelcipher

import (
	"math/rand/v2"
	"strings"
)

// RandomSource picks the code wheel for each encoded letter. *rand.Rand from
// math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Result is the text produced by Encode or Decode together with the inputs
// that were skipped on the way.
type Result struct {
	Text    string
	Skipped []Diagnostic
}

// OK reports whether every token or character was transformed.
func (r Result) OK() bool {
	return len(r.Skipped) == 0
}

type options struct {
	random RandomSource
	strict bool
}

// Option configures Encode and Decode.
type Option func(*options)

// WithRandom sets the source used to choose among the four codes of a letter.
func WithRandom(src RandomSource) Option {
	return func(o *options) {
		if src != nil {
			o.random = src
		}
	}
}

// WithStrict makes the first skipped token or character, or an empty message,
// fail the whole call. The returned Result still holds the partial text.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

func newOptions(opts []Option) options {
	o := options{random: globalSource{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decode turns a space-separated code message back into letters. "(INQ)" is
// read as v4. Codes found on no wheel and a lone trailing character are
// recorded in Result.Skipped and contribute nothing.
func (ws *WheelSet) Decode(message string, opts ...Option) (Result, error) {
	o := newOptions(opts)
	runes := []rune(NormalizeMessage(message))

	var res Result
	if len(runes) == 0 && o.strict {
		return res, ErrEmptyMessage
	}

	var sb strings.Builder
	for pos := 0; pos < len(runes); pos += 2 {
		if pos+1 >= len(runes) {
			d := Diagnostic{Position: pos, Token: string(runes[pos:]), Kind: ErrTrailingCharacter}
			res.Skipped = append(res.Skipped, d)
			if o.strict {
				res.Text = sb.String()
				return res, d
			}
			break
		}

		code := string(runes[pos : pos+2])
		letter, ok := ws.Letter(code)
		if !ok {
			d := Diagnostic{Position: pos, Token: code, Kind: ErrUnrecognizedToken}
			res.Skipped = append(res.Skipped, d)
			if o.strict {
				res.Text = sb.String()
				return res, d
			}
			continue
		}
		sb.WriteString(letter)
	}

	res.Text = sb.String()
	return res, nil
}

// Encode turns plaintext into codes, each followed by a single space. Every
// letter is written with one of its four codes chosen at random, so the same
// plaintext encodes differently from call to call. Characters outside a..z
// are recorded in Result.Skipped.
func (ws *WheelSet) Encode(message string, opts ...Option) (Result, error) {
	o := newOptions(opts)
	runes := []rune(normalizeText(message))

	var res Result
	if len(runes) == 0 && o.strict {
		return res, ErrEmptyMessage
	}

	var sb strings.Builder
	for pos, r := range runes {
		codes, ok := ws.Codes(r)
		if !ok {
			d := Diagnostic{Position: pos, Token: string(r), Kind: ErrUnsupportedCharacter}
			res.Skipped = append(res.Skipped, d)
			if o.strict {
				res.Text = sb.String()
				return res, d
			}
			continue
		}
		sb.WriteString(codes[o.random.IntN(CodeWheels)])
		sb.WriteByte(' ')
	}

	res.Text = sb.String()
	return res, nil
}

// Decode builds the wheels for key and decodes message with them.
func Decode(key, message string, opts ...Option) (Result, error) {
	ws, err := Build(key)
	if err != nil {
		return Result{}, err
	}
	return ws.Decode(message, opts...)
}

// Encode builds the wheels for key and encodes message with them.
func Encode(key, message string, opts ...Option) (Result, error) {
	ws, err := Build(key)
	if err != nil {
		return Result{}, err
	}
	return ws.Encode(message, opts...)
}
