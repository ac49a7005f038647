package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkValidator_Validate(t *testing.T) {
	v := NewLinkValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "thumbnail", input: "https://ws-public.interpol.int/notices/v1/red/2019-1/images/61", want: "https://ws-public.interpol.int/notices/v1/red/2019-1/images/61"},
		{name: "trimmed", input: "  https://ws-public.interpol.int/a  ", want: "https://ws-public.interpol.int/a"},
		{name: "empty", input: "", wantErr: true},
		{name: "relative", input: "/notices/v1/red/2019-1", wantErr: true},
		{name: "file scheme", input: "file:///etc/passwd", wantErr: true},
		{name: "leading dash", input: "-o/tmp/x", wantErr: true},
		{name: "html injection", input: "https://a.int/<script>", wantErr: true},
		{name: "embedded newline", input: "https://a.int/a\nb", wantErr: true},
		{name: "localhost", input: "http://localhost:8080/img", wantErr: true},
		{name: "loopback ip", input: "http://127.0.0.1/img", wantErr: true},
		{name: "private ip", input: "http://192.168.1.10/img", wantErr: true},
		{name: "ipv6 unique local", input: "http://[fd00::1]/img", wantErr: true},
		{name: "unspecified", input: "http://0.0.0.0/img", wantErr: true},
		{name: "traversal", input: "https://a.int/images/../../etc", wantErr: true},
		{name: "too long", input: "https://a.int/" + strings.Repeat("a", 2100), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPermissiveLinkValidator(t *testing.T) {
	v := NewPermissiveLinkValidator()

	for _, link := range []string{"http://localhost:8080/img", "http://127.0.0.1:9/x", "http://10.0.0.5/x"} {
		_, err := v.Validate(link)
		assert.NoError(t, err, link)
	}

	_, err := v.Validate("ftp://localhost/x")
	assert.Error(t, err)
}
