package models

import "strings"

type StartSessionRequest struct {
	Business string `json:"business"`
}

func (r *StartSessionRequest) Normalize() {
	r.Business = strings.TrimSpace(r.Business)
}

type SelectBusinessRequest struct {
	Business string `json:"business"`
}

func (r *SelectBusinessRequest) Normalize() {
	r.Business = strings.TrimSpace(r.Business)
}

type ToggleRequest struct {
	Key string `json:"key"`
}

func (r *ToggleRequest) Normalize() {
	r.Key = strings.TrimSpace(r.Key)
}

type DataRequest struct {
	Kind string `json:"kind"`
}

func (r *DataRequest) Normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
}
