package pagepress

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/alnah/go-pagepress/internal/fileutil"
)

// enginePrefix is prepended to the browser product string.
const enginePrefix = "chromium:"

// Metadata is the sidecar record written next to every artifact.
type Metadata struct {
	Engine            string  `json:"engine"`
	GeneratedAt       string  `json:"generatedAt"`
	InputHash         string  `json:"inputHash"`
	PageCount         *int    `json:"pageCount,omitempty"`
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor,omitempty"`
	Preset            *string `json:"preset"`
	Template          string  `json:"template"`
	Mode              string  `json:"mode"`
	Kind              Kind    `json:"kind"`
}

// Fingerprint returns the hex SHA-256 of raw.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// writeSidecar writes meta as indented JSON.
func writeSidecar(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding metadata: %v", ErrIO, err)
	}
	if err := fileutil.WriteFile(path, append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
