// SPDX-License-Identifier: EPL-2.0

// Package tuning maps a single suppression level in [0, 1] onto the echo
// canceller parameters it overrides.
//
// Levels fall into three tiers rather than being interpolated. A level of
// zero or below means "unset" and selects the most aggressive tier.
package tuning
