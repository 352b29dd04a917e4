// Package data embeds the fixtures shipped with the service binary.
package data

import _ "embed"

// HistoricImpacts is the preset catalog: a JSON array of named historic
// impacts, each a complete impact request.
//
//go:embed mock/historic_impacts.json
var HistoricImpacts []byte
