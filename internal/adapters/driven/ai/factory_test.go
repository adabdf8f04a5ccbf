package ai

import (
	"errors"
	"testing"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

func TestFactory_CreateLLMService_NotConfigured(t *testing.T) {
	f := NewFactory()

	tests := []struct {
		name     string
		settings *domain.ProviderSettings
	}{
		{"nil settings", nil},
		{"empty provider", &domain.ProviderSettings{APIKey: "sk-test"}},
		{"missing api key", &domain.ProviderSettings{Provider: domain.LLMProviderOpenAI}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := f.CreateLLMService(tt.settings)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if svc != nil {
				t.Error("expected nil service for unconfigured settings")
			}
		})
	}
}

func TestFactory_CreateLLMService_Providers(t *testing.T) {
	f := NewFactory()

	for _, provider := range domain.AllProviders() {
		t.Run(string(provider), func(t *testing.T) {
			svc, err := f.CreateLLMService(&domain.ProviderSettings{
				Provider: provider,
				APIKey:   "sk-test",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc == nil {
				t.Fatal("expected a service")
			}
			if svc.Provider() != provider {
				t.Errorf("expected provider %s, got %s", provider, svc.Provider())
			}
			if svc.Model() != domain.DefaultModelFor(provider) {
				t.Errorf("expected default model %s, got %s", domain.DefaultModelFor(provider), svc.Model())
			}
		})
	}
}

func TestFactory_CreateLLMService_ExplicitModel(t *testing.T) {
	f := NewFactory()

	svc, err := f.CreateLLMService(&domain.ProviderSettings{
		Provider: domain.LLMProviderGroq,
		APIKey:   "gsk-test",
		Model:    "llama-3.1-8b-instant",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Model() != "llama-3.1-8b-instant" {
		t.Errorf("expected explicit model kept, got %s", svc.Model())
	}
}

func TestFactory_CreateLLMService_UnknownProvider(t *testing.T) {
	f := NewFactory()

	_, err := f.CreateLLMService(&domain.ProviderSettings{
		Provider: "mystery",
		APIKey:   "sk-test",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}
