package httpcache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint without params",
			key:  Key{Endpoint: "/photos/abc123"},
			want: "gallery:photos/abc123",
		},
		{
			name: "search with params",
			key: Key{
				Endpoint: "/search/photos",
				QueryParams: url.Values{
					"query":    []string{"cats"},
					"page":     []string{"1"},
					"per_page": []string{"12"},
				},
			},
			want: "gallery:search/photos:page=1:per_page=12:query=cats",
		},
		{
			name: "params sorted deterministically",
			key: Key{
				Endpoint: "/users/tiger/photos",
				QueryParams: url.Values{
					"per_page": []string{"50"},
					"page":     []string{"1"},
				},
			},
			want: "gallery:users/tiger/photos:page=1:per_page=50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKey_Determinism(t *testing.T) {
	key := Key{
		Endpoint: "/search/photos",
		QueryParams: url.Values{
			"query":    []string{"cats"},
			"order_by": []string{"latest"},
			"color":    []string{"teal"},
			"page":     []string{"3"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("key %q differs from %q (not deterministic)", got, first)
		}
	}
}
