package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/depconv/batch"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Converter *batch.Converter
}

// ConvertCmd handles the conversion of one input tree.
type ConvertCmd struct {
	InputRoot string
	Geocoding bool
}
