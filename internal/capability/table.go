// Package capability holds the static per-platform getter support table
// and the pre-flight validator that rejects a batch before any device I/O
// when a requested getter is not supported everywhere.
package capability

// getterSupport maps a platform tag to the getters its driver implements.
// Platforms absent from the table are treated as unknown and skip
// validation rather than being rejected.
var getterSupport = map[string][]string{
	"eos": {
		"arp_table", "bgp_config", "bgp_neighbors", "bgp_neighbors_detail",
		"climate", "config", "environment", "facts", "firewall_policies",
		"interfaces", "interfaces_ip", "lldp_neighbors", "lldp_neighbors_detail",
		"mac_address_table", "network_instances", "ntp_peers", "ntp_servers",
		"ntp_stats", "probes", "probes_config", "route_to", "snmp", "users",
		"vlans",
	},
	"ios": {
		"arp_table", "bgp_config", "bgp_neighbors", "bgp_neighbors_detail",
		"config", "environment", "facts", "interfaces", "interfaces_ip",
		"lldp_neighbors", "lldp_neighbors_detail", "mac_address_table",
		"ntp_peers", "ntp_servers", "ntp_stats", "route_to", "snmp", "users",
	},
	"iosxr": {
		"arp_table", "bgp_config", "bgp_neighbors", "bgp_neighbors_detail",
		"config", "environment", "facts", "interfaces", "interfaces_ip",
		"lldp_neighbors", "lldp_neighbors_detail", "mac_address_table",
		"ntp_peers", "ntp_servers", "ntp_stats", "route_to", "users",
	},
	"iosxr_netconf": {
		"bgp_config", "bgp_neighbors", "config", "facts", "interfaces",
		"interfaces_ip",
	},
	"junos": {
		"arp_table", "bgp_config", "bgp_neighbors", "bgp_neighbors_detail",
		"climate", "config", "environment", "facts", "firewall_policies",
		"interfaces", "interfaces_ip", "lldp_neighbors", "lldp_neighbors_detail",
		"mac_address_table", "network_instances", "ntp_peers", "ntp_servers",
		"ntp_stats", "probes", "probes_config", "route_to", "users", "vlans",
	},
	"nxos": {
		"arp_table", "bgp_config", "bgp_neighbors", "bgp_neighbors_detail",
		"config", "environment", "facts", "interfaces", "interfaces_ip",
		"lldp_neighbors", "lldp_neighbors_detail", "mac_address_table",
		"ntp_peers", "ntp_servers", "ntp_stats", "route_to", "snmp", "users",
		"vlans",
	},
	"nxos_ssh": {
		"arp_table", "bgp_config", "bgp_neighbors", "bgp_neighbors_detail",
		"config", "facts", "interfaces", "interfaces_ip", "lldp_neighbors",
		"lldp_neighbors_detail", "mac_address_table", "ntp_servers", "users",
		"vlans",
	},
}

// SupportedGetters returns the getters known to work on a platform. The
// second return is false for an unknown platform.
func SupportedGetters(platform string) ([]string, bool) {
	getters, ok := getterSupport[platform]
	return getters, ok
}

// Platforms lists all platforms present in the support table.
func Platforms() []string {
	names := make([]string, 0, len(getterSupport))
	for p := range getterSupport {
		names = append(names, p)
	}
	return names
}
