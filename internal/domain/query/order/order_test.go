package order

import "testing"

var fallback = Key{Path: "_chain.valid_from", Direction: Descending}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   *Input
		want Key
	}{
		{
			name: "nil input",
			in:   nil,
			want: fallback,
		},
		{
			name: "nothing set",
			in:   new(Input).Add("xp", Directive{}).Add("gold", Directive{}),
			want: fallback,
		},
		{
			name: "first match wins over later asc",
			in:   new(Input).Add("xp", Directive{Desc: true}).Add("gold", Directive{Asc: true}),
			want: Key{Path: "xp", Direction: Descending},
		},
		{
			name: "asc before desc on same field",
			in:   new(Input).Add("xp", Directive{Asc: true, Desc: true}),
			want: Key{Path: "xp", Direction: Ascending},
		},
		{
			name: "skips unset fields",
			in:   new(Input).Add("xp", Directive{}).Add("gold", Directive{Asc: true}),
			want: Key{Path: "gold", Direction: Ascending},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.in, fallback); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDirection_String(t *testing.T) {
	if Ascending.String() != "asc" || Descending.String() != "desc" {
		t.Error("Direction.String mismatch")
	}
}
