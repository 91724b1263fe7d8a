package importer

import "testing"

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  acme  ltda ", "ACME LTDA"},
		{"Beta\tSegurança", "BETA SEGURANÇA"},
		{"vip", "VIP"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFoldHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Função", "funcao"},
		{"NOME COMPLETO", "nomecompleto"},
		{"credential_name", "credentialname"},
		{"  CPF ", "cpf"},
	}
	for _, tc := range cases {
		if got := FoldHeader(tc.in); got != tc.want {
			t.Errorf("FoldHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPadDocument(t *testing.T) {
	cases := []struct{ in, want string }{
		{"123", "00000000123"},
		{"12345678901", "12345678901"},
		{"123456789012", "123456789012"},
	}
	for _, tc := range cases {
		if got := PadDocument(tc.in); got != tc.want {
			t.Errorf("PadDocument(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
