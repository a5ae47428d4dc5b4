package application

import "context"

// SampleSource is the host audio capture collaborator the snd_put task
// reads from. Out of scope per spec.md §1 ("host audio capture... thin
// glue"); this is the port a concrete capture backend implements.
type SampleSource interface {
	// Samples returns a channel of captured PCM sample batches, closed when
	// capture stops or ctx is cancelled.
	Samples(ctx context.Context) <-chan []float32
}

// SampleSink is the host audio playback collaborator the snd_get task
// forwards decrypted samples to.
type SampleSink interface {
	Accept(samples []float32) error
}

// ConsolePrompter is the console I/O collaborator the msg_put/msg_get tasks
// use for the text channel. Out of scope per spec.md §1 ("console
// prompts... thin glue").
type ConsolePrompter interface {
	ReadLine(ctx context.Context) (string, error)
	WriteLine(line string) error
}
