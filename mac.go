// MAC 地址

package btccore

import (
	"errors"
	"net"
	"strings"
)

// errNoMACAddress 表示没有可用的网卡
var errNoMACAddress = errors.New("no MAC address found")

// interfaceWeight 为网卡打分：物理网卡、已启用、带有 IPv4 地址各加 10 分
func interfaceWeight(iface net.Interface) int {
	weight := 0
	if !strings.Contains(iface.Name, "vmnet") && !strings.Contains(iface.Name, "vboxnet") {
		weight += 10
	}
	if iface.Flags&net.FlagUp != 0 {
		weight += 10
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return weight
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			weight += 10
			break
		}
	}
	return weight
}

// GetPrimaryMACAddress 返回电脑上得分最高的非回环网卡的 MAC 地址，用作默认实例标识
func GetPrimaryMACAddress() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var mac string
	best := 0
	for _, iface := range interfaces {
		if len(iface.HardwareAddr) == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		if weight := interfaceWeight(iface); weight > best {
			best = weight
			mac = iface.HardwareAddr.String()
		}
	}

	if mac == "" {
		return "", errNoMACAddress
	}
	return mac, nil
}
