// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"github.com/google/uuid"
)

// Analytics holds the engagement counters for a single post or
// category. Views, impressions, and clicks are monotonic; the
// click-through rate is derived from clicks and impressions and is
// recomputed after every mutation of either — it is never written
// independently of its inputs.
type Analytics struct {
	ID               uuid.UUID `json:"id"`
	EntityID         uuid.UUID `json:"entity_id"`
	Views            int64     `json:"views"`
	Impressions      int64     `json:"impressions"`
	Clicks           int64     `json:"clicks"`
	ClickThroughRate float64   `json:"click_through_rate"`
}

// RecomputeCTR derives the click-through rate from the current
// clicks and impressions. Zero impressions yields a rate of 0 rather
// than a division error.
func (a *Analytics) RecomputeCTR() {
	if a.Impressions > 0 {
		a.ClickThroughRate = float64(a.Clicks) / float64(a.Impressions) * 100
	} else {
		a.ClickThroughRate = 0
	}
}
