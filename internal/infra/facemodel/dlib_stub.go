//go:build !dlib
// +build !dlib

package facemodel

import (
	"context"
	"errors"
	"image"

	"voice-assistant/internal/domain"
)

var errDlibNotBuilt = errors.New("dlib backend not available: rebuild with -tags dlib")

type DlibModel struct{}

func NewDlibModel(_ string, _ float64) (*DlibModel, error) {
	return nil, errDlibNotBuilt
}

func (m *DlibModel) Name() string       { return "dlib" }
func (m *DlibModel) Tolerance() float64 { return DefaultTolerance }
func (m *DlibModel) Close() error       { return nil }

func (m *DlibModel) Detect(context.Context, []byte) ([]image.Rectangle, error) {
	return nil, errDlibNotBuilt
}

func (m *DlibModel) Encode(context.Context, []byte) ([]domain.Face, error) {
	return nil, errDlibNotBuilt
}
