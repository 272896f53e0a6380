// Package task builds the units of work the dispatcher executes: getter
// retrieval, show and config command batches, connectivity tests, and
// file pushes. Output is raw CLI text keyed by getter or command name;
// nothing here parses vendor output.
package task

import "fmt"

// platformAlias folds driver variants onto the platform whose CLI they
// share.
var platformAlias = map[string]string{
	"nxos_ssh":      "nxos",
	"iosxr_netconf": "iosxr",
}

func canonicalPlatform(platform string) string {
	if alias, ok := platformAlias[platform]; ok {
		return alias
	}
	return platform
}

// getterCommands maps getter name to the show command that produces the
// equivalent raw output, per platform.
var getterCommands = map[string]map[string]string{
	"ios": {
		"facts":             "show version",
		"interfaces":        "show interfaces",
		"interfaces_ip":     "show ip interface brief",
		"bgp_neighbors":     "show ip bgp summary",
		"lldp_neighbors":    "show lldp neighbors detail",
		"arp_table":         "show ip arp",
		"mac_address_table": "show mac address-table",
		"users":             "show users",
		"environment":       "show environment all",
	},
	"eos": {
		"facts":             "show version",
		"interfaces":        "show interfaces",
		"interfaces_ip":     "show ip interface brief",
		"bgp_neighbors":     "show ip bgp summary",
		"lldp_neighbors":    "show lldp neighbors detail",
		"network_instances": "show vrf",
		"arp_table":         "show ip arp",
		"mac_address_table": "show mac address-table",
		"vlans":             "show vlan",
		"users":             "show users detail",
		"environment":       "show system environment all",
	},
	"iosxr": {
		"facts":          "show version",
		"interfaces":     "show interfaces",
		"interfaces_ip":  "show ipv4 interface brief",
		"bgp_neighbors":  "show bgp summary",
		"lldp_neighbors": "show lldp neighbors detail",
		"arp_table":      "show arp",
	},
	"junos": {
		"facts":             "show version",
		"interfaces":        "show interfaces detail",
		"interfaces_ip":     "show interfaces terse",
		"bgp_neighbors":     "show bgp summary",
		"lldp_neighbors":    "show lldp neighbors",
		"network_instances": "show route instance",
		"arp_table":         "show arp",
		"vlans":             "show vlans",
	},
	"nxos": {
		"facts":          "show version",
		"interfaces":     "show interface",
		"interfaces_ip":  "show ip interface brief",
		"bgp_neighbors":  "show ip bgp summary",
		"lldp_neighbors": "show lldp neighbors detail",
		"arp_table":      "show ip arp",
		"vlans":          "show vlan",
	},
}

// configSourceCommands maps a config source (running, startup, candidate)
// to the retrieval command, per platform.
var configSourceCommands = map[string]map[string]string{
	"ios": {
		"running": "show running-config",
		"startup": "show startup-config",
	},
	"eos": {
		"running": "show running-config",
		"startup": "show startup-config",
	},
	"iosxr": {
		"running": "show running-config",
	},
	"junos": {
		"running":   "show configuration",
		"candidate": "show configuration | compare",
	},
	"nxos": {
		"running": "show running-config",
		"startup": "show startup-config",
	},
}

// configMode holds the enter/exit commands that bracket a config push.
type configMode struct {
	enter string
	exit  string
}

var configModes = map[string]configMode{
	"ios":   {enter: "configure terminal", exit: "end"},
	"eos":   {enter: "configure", exit: "end"},
	"iosxr": {enter: "configure terminal", exit: "commit"},
	"junos": {enter: "configure", exit: "commit and-quit"},
	"nxos":  {enter: "configure terminal", exit: "end"},
}

// pingCommands and tracerouteCommands format a connectivity-test command
// for a target address.
var pingCommands = map[string]string{
	"ios":   "ping %s",
	"eos":   "ping %s",
	"iosxr": "ping %s",
	"junos": "ping %s rapid count 5",
	"nxos":  "ping %s",
}

var tracerouteCommands = map[string]string{
	"ios":   "traceroute %s",
	"eos":   "traceroute %s",
	"iosxr": "traceroute %s",
	"junos": "traceroute %s",
	"nxos":  "traceroute %s",
}

// GetterCommand returns the CLI command producing the getter's output on
// the platform.
func GetterCommand(platform, getter string) (string, error) {
	table, ok := getterCommands[canonicalPlatform(platform)]
	if !ok {
		return "", fmt.Errorf("no command table for platform %q", platform)
	}
	cmd, ok := table[getter]
	if !ok {
		return "", fmt.Errorf("no %q command mapping for platform %q", getter, platform)
	}
	return cmd, nil
}

// ConfigCommand returns the command that retrieves the requested config
// source on the platform.
func ConfigCommand(platform, source string) (string, error) {
	table, ok := configSourceCommands[canonicalPlatform(platform)]
	if !ok {
		return "", fmt.Errorf("no config command table for platform %q", platform)
	}
	cmd, ok := table[source]
	if !ok {
		return "", fmt.Errorf("config source %q not available on platform %q", source, platform)
	}
	return cmd, nil
}

func pingCommand(platform, target string) string {
	tpl, ok := pingCommands[canonicalPlatform(platform)]
	if !ok {
		tpl = "ping %s"
	}
	return fmt.Sprintf(tpl, target)
}

func tracerouteCommand(platform, target string) string {
	tpl, ok := tracerouteCommands[canonicalPlatform(platform)]
	if !ok {
		tpl = "traceroute %s"
	}
	return fmt.Sprintf(tpl, target)
}
