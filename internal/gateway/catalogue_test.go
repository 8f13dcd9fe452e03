package gateway

import "testing"

func TestCommandsCoverCatalogue(t *testing.T) {
	commands := Commands()
	if len(commands) != len(remoteCatalogue)+len(dialogCatalogue) {
		t.Fatalf("menu misses entries: %d", len(commands))
	}

	seen := make(map[string]bool, len(commands))
	for _, command := range commands {
		if command.Name == "" || command.Description == "" {
			t.Fatalf("incomplete descriptor: %+v", command)
		}
		if seen[command.Name] {
			t.Fatalf("duplicate command name %q", command.Name)
		}
		seen[command.Name] = true
	}

	for _, name := range []string{"find_email", "find_phone_number", "verify_password", "get_apt_list", "get_emails", "get_phones", "cancel", "get_release", "get_services"} {
		if !seen[name] {
			t.Fatalf("menu is missing %q", name)
		}
	}
}

func TestRemoteCatalogueHasTemplates(t *testing.T) {
	for _, descriptor := range remoteCatalogue {
		if descriptor.Template == "" {
			t.Fatalf("remote command %q has no template", descriptor.Name)
		}
	}
}

func TestCatalogueDescriptorPanicsOnUnknownName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unregistered command")
		}
	}()
	catalogueDescriptor("get_everything")
}
