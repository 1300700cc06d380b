package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/policy"
)

func TestCheckForbidden(t *testing.T) {
	tests := []struct {
		name    string
		q       string
		wantErr string
	}{
		{"Delete Stage", "FROM logs | DELETE x", `forbidden keyword "DELETE"`},
		{"Lowercase Drop", "FROM logs | drop field", `forbidden keyword "DROP"`},
		{"Post", "POST /_bulk", `forbidden keyword "POST"`},
		{"Substring Allowed", `FROM logs | WHERE field == "DELETED"`, ""},
		{"Identifier Allowed", "FROM logs | KEEP updated_at, created_by", ""},
		{"Plain Query", "FROM logs | LIMIT 10", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CheckForbidden(tt.q)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrForbiddenKeyword)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
