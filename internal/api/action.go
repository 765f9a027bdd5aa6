package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MatrixAction binds an alert to a delivery config (spec §4.10: "Create
// matrix action (alert_id, config_id)"). Like Alert and matrix.Config, its
// identity is a content hash of its fields.
type MatrixAction struct {
	AlertID  string `json:"alert_id"`
	ConfigID string `json:"config_id"`
}

func (a MatrixAction) ID() string {
	h := sha256.New()
	fmt.Fprintf(h, "alert_id=%s;config_id=%s", a.AlertID, a.ConfigID)
	return hex.EncodeToString(h.Sum(nil))
}
