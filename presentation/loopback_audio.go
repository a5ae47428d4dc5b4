package presentation

import "context"

// LoopbackAudio is a stand-in SampleSource/SampleSink that the CLI entry
// point wires in, in every peer mode: samples handed to Accept are replayed back
// out of Samples, so a session can be exercised end-to-end without a real
// capture/playback device. Concrete host audio capture/playback is out of
// scope per spec.md §1.
type LoopbackAudio struct {
	buf chan []float32
}

func NewLoopbackAudio() *LoopbackAudio {
	return &LoopbackAudio{buf: make(chan []float32, 64)}
}

func (l *LoopbackAudio) Samples(ctx context.Context) <-chan []float32 {
	out := make(chan []float32)
	go func() {
		defer close(out)
		for {
			select {
			case s, ok := <-l.buf:
				if !ok {
					return
				}
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (l *LoopbackAudio) Accept(samples []float32) error {
	cp := append([]float32(nil), samples...)
	l.buf <- cp
	return nil
}
