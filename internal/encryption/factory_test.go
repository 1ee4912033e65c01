package encryption

import (
	"fmt"
	"testing"

	"dcat-go/internal/config"
)

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		want    string
		wantErr bool
	}{
		{"default is age", "", "*encryption.AgeEncryptor", false},
		{"age", "age", "*encryption.AgeEncryptor", false},
		{"none", "none", "encryption.NoEncryptor", false},
		{"test", "test", "*encryption.TestEncryptor", false},
		{"unknown", "rot13", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if typeName(got) != tt.want {
				t.Errorf("NewEncryptorFromConfig() = %s, want %s", typeName(got), tt.want)
			}
		})
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
