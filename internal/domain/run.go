package domain

import "time"

// Run is one recorded import of a source file
type Run struct {
	ID        string
	Source    string
	Version   string
	Policy    string
	CreatedAt time.Time

	Tracks   int
	Nodes    int
	Edges    int
	Objects  int
	Warnings int

	// Counts holds the number of objects per kind
	Counts map[ObjectKind]int
	// Dump is the diffable JSON dump of the imported model
	Dump []byte
}

// PublishStats holds statistics from publishing a topology graph
type PublishStats struct {
	Nodes    int
	Edges    int
	Objects  int
	Duration time.Duration
}
