package gateway

import "fmt"

// Descriptor is one entry of the fixed command catalogue. Dialogue-entry
// commands carry no template; everything else maps to a remote command.
type Descriptor struct {
	Name        string
	Description string
	Template    string
}

// Remote diagnostic commands, in menu order. Loaded once; never mutated.
var remoteCatalogue = []Descriptor{
	{Name: "get_release", Description: "OS release information", Template: "cat /etc/*release*"},
	{Name: "get_uname", Description: "Kernel, architecture and hostname", Template: "uname -a"},
	{Name: "get_uptime", Description: "System uptime", Template: "uptime"},
	{Name: "get_df", Description: "Filesystem usage", Template: "df -h"},
	{Name: "get_free", Description: "Memory usage", Template: "free -m"},
	{Name: "get_mpstat", Description: "Processor performance statistics", Template: "mpstat"},
	{Name: "get_w", Description: "Logged-in users", Template: "w"},
	{Name: "get_auths", Description: "Last login events", Template: "journalctl --no-pager SYSLOG_FACILITY=10 -n 10"},
	{Name: "get_critical", Description: "Last critical system events", Template: "journalctl --no-pager -p 2 -n5"},
	{Name: "get_ps", Description: "Process tree", Template: "ps -axf"},
	{Name: "get_ss", Description: "All sockets", Template: "ss -a"},
	{Name: "get_ss_listen", Description: "Listening sockets", Template: "ss -l"},
	{Name: "get_ss_connected", Description: "Connected sockets", Template: "ss state connected"},
	{Name: "get_services", Description: "Service states", Template: "systemctl --no-pager --type=service"},
}

// Dialogue-entry commands shown in the menu alongside the catalogue.
var dialogCatalogue = []Descriptor{
	{Name: "find_email", Description: "Find email addresses in a text"},
	{Name: "find_phone_number", Description: "Find phone numbers in a text"},
	{Name: "verify_password", Description: "Check password complexity"},
	{Name: "get_apt_list", Description: "Browse and search the installed package list"},
	{Name: "get_emails", Description: "Show saved email addresses"},
	{Name: "get_phones", Description: "Show saved phone numbers"},
	{Name: "cancel", Description: "Cancel the active dialogue"},
}

// Package-list templates for the get_apt_list dialogue. The filter shows
// package detail when the filter names exactly one package and greps the
// installed list otherwise.
const (
	aptListTemplate   = "apt list --installed"
	aptFilterTemplate = "apt list {pkg} &>/dev/null && apt-cache show {pkg} || apt list --installed | grep {pkg}"
)

var remoteByName = func() map[string]Descriptor {
	byName := make(map[string]Descriptor, len(remoteCatalogue))
	for _, descriptor := range remoteCatalogue {
		byName[descriptor.Name] = descriptor
	}
	return byName
}()

// Commands returns the full menu listing: extraction dialogues first, then
// the remote catalogue, then the package dialogue and cancel.
func Commands() []Descriptor {
	commands := make([]Descriptor, 0, len(dialogCatalogue)+len(remoteCatalogue))
	commands = append(commands, dialogCatalogue[:3]...)
	commands = append(commands, remoteCatalogue...)
	commands = append(commands, dialogCatalogue[3:]...)
	return commands
}

// catalogueDescriptor resolves a remote command by name. Callers must only
// pass names taken from the registered menu; anything else is a programming
// error, not user input.
func catalogueDescriptor(name string) Descriptor {
	descriptor, ok := remoteByName[name]
	if !ok {
		panic(fmt.Sprintf("gateway: dispatch of unregistered command %q", name))
	}
	return descriptor
}
