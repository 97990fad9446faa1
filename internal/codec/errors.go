// SPDX-License-Identifier: AGPL-3.0-or-later

package codec

import "fmt"

// StageError identifies which codec-chain stage failed, so the caller
// can emit the {error: "decode_failure", stage, channel} event
// required by the error taxonomy.
type StageError struct {
	Stage  string
	Reason string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}
