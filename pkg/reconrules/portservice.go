// Package reconrules holds the plain, read-only rule tables the recon
// pipeline classifies against: port-to-service defaults, banner
// classification, HTTP-candidate detection, and admin-directory probing.
// Every table is built once (package init) and never mutated afterward.
package reconrules

// PortService describes the default label assigned to a port before any
// banner has been inspected.
type PortService struct {
	Name     string
	Category string
}

// PortServiceTable maps well-known ports (regular services, VPN, VNC,
// remote-admin tools, and known malware/C2 listeners) to a default
// service label. BannerGrabber consults it first and lets banner content
// rules override the result.
var PortServiceTable = map[int]PortService{
	21:  {Name: "ftp"},
	22:  {Name: "ssh"},
	23:  {Name: "telnet"},
	25:  {Name: "smtp"},
	53:  {Name: "dns"},
	80:  {Name: "http"},
	110: {Name: "pop3"},
	135: {Name: "msrpc"},
	139: {Name: "netbios-ssn"},
	143: {Name: "imap"},
	443: {Name: "https"},
	445: {Name: "smb"},
	993: {Name: "imaps"},
	995: {Name: "pop3s"},

	1433:  {Name: "mssql"},
	1521:  {Name: "oracle"},
	3306:  {Name: "mysql"},
	3389:  {Name: "rdp"},
	5432:  {Name: "postgresql"},
	6379:  {Name: "redis"},
	27017: {Name: "mongodb"},

	// VPN
	500:   {Name: "ike", Category: "vpn"},
	1194:  {Name: "openvpn", Category: "vpn"},
	1723:  {Name: "pptp", Category: "vpn"},
	4500:  {Name: "ipsec", Category: "vpn"},
	51820: {Name: "wireguard", Category: "vpn"},

	// VNC
	5800: {Name: "vnc-http", Category: "remote"},
	5900: {Name: "vnc", Category: "remote"},
	5901: {Name: "vnc", Category: "remote"},
	5902: {Name: "vnc", Category: "remote"},
	5903: {Name: "vnc", Category: "remote"},
	5904: {Name: "vnc", Category: "remote"},
	5905: {Name: "vnc", Category: "remote"},
	5906: {Name: "vnc", Category: "remote"},
	5907: {Name: "vnc", Category: "remote"},
	5908: {Name: "vnc", Category: "remote"},
	5909: {Name: "vnc", Category: "remote"},
	5910: {Name: "vnc", Category: "remote"},

	// Remote admin
	5938: {Name: "teamviewer", Category: "remote"},
	6129: {Name: "dameware", Category: "remote"},
	6568: {Name: "anydesk", Category: "remote"},
	8200: {Name: "gotomypc", Category: "remote"},

	// Known malware / C2 listeners
	666:   {Name: "malware", Category: "malware"},
	1080:  {Name: "socks-proxy", Category: "proxy"},
	1234:  {Name: "ultors-trojan", Category: "malware"},
	1243:  {Name: "subseven", Category: "malware"},
	1337:  {Name: "hacker-tools", Category: "malware"},
	2222:  {Name: "c2-channel", Category: "malware"},
	3000:  {Name: "beef-panel", Category: "malware"},
	4444:  {Name: "metasploit", Category: "malware"},
	6666:  {Name: "irc-botnet", Category: "malware"},
	6667:  {Name: "irc", Category: "irc"},
	8080:  {Name: "http-proxy", Category: "proxy"},
	9050:  {Name: "tor-socks", Category: "proxy"},
	12345: {Name: "netbus", Category: "malware"},
	31337: {Name: "elite-tools", Category: "malware"},
	50050: {Name: "cobaltstrike", Category: "malware"},
}

// LookupPortService returns the default service label for port, or the
// zero value with ok=false when nothing is registered.
func LookupPortService(port int) (PortService, bool) {
	svc, ok := PortServiceTable[port]
	return svc, ok
}
