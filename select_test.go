package skm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestChoosers(t *testing.T) {
	a, b := quadShape(), quadShape()
	a.Name, b.Name = "left", "right"
	candidates := []*Shape{a, b}

	tests := []struct {
		name    string
		chooser ShapeChooser
		want    int
		err     error
	}{
		{"First", FirstChooser{}, 0, nil},
		{"Single", SingleChooser{}, 0, ErrAmbiguousShape},
		{"Index", IndexChooser(1), 1, nil},
		{"IndexOutOfRange", IndexChooser(2), 0, ErrShapeSelection},
		{"IndexNegative", IndexChooser(-1), 0, ErrShapeSelection},
		{"Prompt", &PromptChooser{In: strings.NewReader("1\n"), Out: &bytes.Buffer{}}, 1, nil},
		{"PromptOutOfRange", &PromptChooser{In: strings.NewReader("7\n"), Out: &bytes.Buffer{}}, 0, ErrShapeSelection},
		{"PromptGarbage", &PromptChooser{In: strings.NewReader("left\n"), Out: &bytes.Buffer{}}, 0, ErrShapeSelection},
		{"PromptEOF", &PromptChooser{In: strings.NewReader(""), Out: &bytes.Buffer{}}, 0, ErrShapeSelection},
		{"PromptEOFCause", &PromptChooser{In: strings.NewReader(""), Out: &bytes.Buffer{}}, 0, io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.chooser.Choose(candidates)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("error got %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPromptChooserListsShapes(t *testing.T) {
	a, b := quadShape(), quadShape()
	a.Name, b.Name = "left", "right"
	out := &bytes.Buffer{}
	c := &PromptChooser{In: strings.NewReader("0"), Out: out}
	if _, err := c.Choose([]*Shape{a, b}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"left", "right", "Shape: "} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("prompt lacks %q:\n%s", want, out)
		}
	}
}
