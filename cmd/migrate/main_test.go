package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_UnknownCommand(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// The DSN is never dialled: the command is rejected first.
	err := run("sideways", "postgres://nobody@127.0.0.1:1/none?sslmode=disable", logger)

	assert.ErrorIs(t, err, errUnknownCommand)
}
