package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/sim"
)

type Document struct {
	Name      string             `json:"name,omitempty"`
	Params    heat.Params        `json:"params"`
	Fourier   float64            `json:"fourier"`
	Positions []float64          `json:"positions"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	History   [][]float64        `json:"history"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func NewDocument(result *sim.Result) Document {
	doc := Document{
		Name:      result.Name,
		Params:    result.Params,
		Fourier:   result.Fourier,
		Positions: heat.Positions(result.Params.Length, result.Params.Points),
		Steps:     result.StepsTaken,
		Times:     result.Times,
		History:   make([][]float64, len(result.History)),
		Metrics:   result.Metrics,
	}
	for i, f := range result.History {
		doc.History[i] = f
	}
	return doc
}

func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
