package forge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		in      string
		want    RepositoryID
		wantErr bool
	}{
		{in: "googleapis/api-client-staging", want: RepositoryID{"github.com", "googleapis", "api-client-staging"}},
		{in: "https://github.com/googleapis/api-client-staging.git", want: RepositoryID{"github.com", "googleapis", "api-client-staging"}},
		{in: "https://ghe.example.com/team/repo/", want: RepositoryID{"ghe.example.com", "team", "repo"}},
		{in: "git@github.com:googleapis/api-client-staging.git", want: RepositoryID{"github.com", "googleapis", "api-client-staging"}},
		{in: "ssh://git@ghe.example.com/team/repo.git", want: RepositoryID{"ghe.example.com", "team", "repo"}},
		{in: "just-a-name", wantErr: true},
		{in: "a/b/c", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepository(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Owner+"/"+tt.want.Name, got.String())
		})
	}
}
