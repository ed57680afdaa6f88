package console

import (
	"fmt"

	"pricetracker/internal/application/port"
)

type Sink struct{}

func NewSink() port.Sink { return &Sink{} }

func (s *Sink) WriteLive(line string) error {
	fmt.Print(line) // no newline, the next live line overwrites it
	return nil
}

func (s *Sink) NewLine() error {
	fmt.Print("\n")
	return nil
}
