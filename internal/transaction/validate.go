// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transaction

import (
	"strings"

	"github.com/libapps/bulkill/pkg/types"
)

// pickupField is the destination-system field that carries the pickup
// location for loan-kind requests. Users see it as "Pickup Location";
// the internal name never appears in error text.
const pickupField = "ItemInfo4"

// friendlyNames translates destination field names for error messages.
var friendlyNames = map[string]string{
	pickupField: "Pickup Location",
}

// Validate checks a payload for its request kind's required fields and
// returns a human-readable error listing every missing one, or the empty
// string when the payload is submittable. A field present with an empty
// value counts as missing. Validate never mutates the payload, so calling
// it twice yields the same answer.
//
// The base required set is ExternalUserId, RequestType and ProcessType;
// loan-kind requests additionally need the pickup location. With strict
// set, the title field of the request kind is required too, which rejects
// effectively empty citations before the remote service sees them.
func Validate(p types.TransactionPayload, strict bool) string {
	required := []string{"ExternalUserId", "RequestType", "ProcessType"}
	isLoan := p["RequestType"] == string(types.RequestLoan)
	if isLoan {
		required = append(required, pickupField)
	}
	if strict {
		if isLoan {
			required = append(required, "LoanTitle")
		} else {
			required = append(required, "PhotoArticleTitle")
		}
	}

	var missing []string
	for _, field := range required {
		if p[field] == "" {
			name := field
			if friendly, ok := friendlyNames[field]; ok {
				name = friendly
			}
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "The following required fields are missing from the transaction: " + strings.Join(missing, ", ") + "."
}
