// Package wifi models an ESP8266 WiFi modem on a serial link: AT
// command parsing with echo, a virtual access-point database, and
// real TCP client connections for the CIPSTART family.
package wifi

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const firmwareVersion = "AT version:1.7.4.0\r\nSDK version:3.0.4"

// AccessPoint is one entry of the virtual AP database.
type AccessPoint struct {
	SSID     string
	Password string
	RSSI     int
	// Ecn is the encryption enumeration the AT protocol reports:
	// 0 open, 3 WPA2-PSK.
	Ecn int
}

// wifi modes.
const (
	ModeStation = 1
	ModeAP      = 2
	ModeBoth    = 3
)

// Dialer opens client connections for CIPSTART. Tests substitute a
// fake; the default uses the host network.
type Dialer func(network, address string) (net.Conn, error)

// ESP8266 is the modem model. HostWrite and HostRead are the two ends
// of the UART; Poll pumps connection data into +IPD notifications.
type ESP8266 struct {
	rx []byte // bytes from the host, assembling a command line
	tx []byte // bytes waiting for the host

	echo bool
	mode int

	aps       []AccessPoint
	joined    string
	stationIP string

	conn net.Conn
	dial Dialer

	// CIPSEND collection state: after the prompt, collect bytes
	// until the announced length is reached.
	collecting bool
	collectLen int
	collected  []byte
}

// Option configures the modem.
type Option func(*ESP8266)

// WithDialer substitutes the connection dialer.
func WithDialer(d Dialer) Option {
	return func(e *ESP8266) { e.dial = d }
}

// WithAccessPoint adds an entry to the virtual AP database.
func WithAccessPoint(ap AccessPoint) Option {
	return func(e *ESP8266) { e.aps = append(e.aps, ap) }
}

// New creates a modem in station mode with echo on.
func New(opts ...Option) *ESP8266 {
	e := &ESP8266{
		echo: true,
		mode: ModeStation,
		dial: func(network, address string) (net.Conn, error) {
			return net.DialTimeout(network, address, 3*time.Second)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HostWrite receives one byte from the CPU side of the UART.
func (e *ESP8266) HostWrite(b byte) {
	if e.collecting {
		e.collected = append(e.collected, b)
		if len(e.collected) >= e.collectLen {
			e.finishSend()
		}
		return
	}

	if e.echo {
		e.tx = append(e.tx, b)
	}
	if b == '\n' {
		line := strings.TrimSpace(string(e.rx))
		e.rx = e.rx[:0]
		if line != "" {
			e.execute(line)
		}
		return
	}
	if b != '\r' {
		e.rx = append(e.rx, b)
	}
}

// HostRead hands one byte to the CPU side if any output is pending.
func (e *ESP8266) HostRead() (byte, bool) {
	if len(e.tx) == 0 {
		return 0, false
	}
	b := e.tx[0]
	e.tx = e.tx[1:]
	return b, true
}

func (e *ESP8266) respond(s string) {
	e.tx = append(e.tx, []byte(s)...)
}

func (e *ESP8266) ok()  { e.respond("\r\nOK\r\n") }
func (e *ESP8266) err() { e.respond("\r\nERROR\r\n") }

// execute dispatches one assembled command line.
func (e *ESP8266) execute(line string) {
	cmd, arg, _ := strings.Cut(line, "=")
	cmd = strings.ToUpper(cmd)
	// _CUR and _DEF variants behave alike here.
	cmd = strings.TrimSuffix(cmd, "_CUR")
	cmd = strings.TrimSuffix(cmd, "_DEF")

	switch cmd {
	case "AT":
		e.ok()
	case "ATE0":
		e.echo = false
		e.ok()
	case "ATE1":
		e.echo = true
		e.ok()
	case "AT+RST":
		e.reset()
		e.ok()
		e.respond("ready\r\n")
	case "AT+GMR":
		e.respond("\r\n" + firmwareVersion + "\r\n")
		e.ok()
	case "AT+UART":
		e.ok()
	case "AT+CWMODE":
		e.setMode(arg)
	case "AT+CWMODE?":
		fmt.Fprintf(e.writer(), "\r\n+CWMODE:%d\r\n", e.mode)
		e.ok()
	case "AT+CWJAP":
		e.join(arg)
	case "AT+CWQAP":
		e.joined = ""
		e.stationIP = ""
		e.ok()
	case "AT+CWLAP":
		e.listAPs()
	case "AT+CIFSR":
		e.reportIP()
	case "AT+CWSAP":
		if e.mode&ModeAP == 0 {
			e.err()
			return
		}
		e.ok()
	case "AT+CIPSTART":
		e.cipStart(arg)
	case "AT+CIPSEND":
		e.cipSend(arg)
	case "AT+CIPCLOSE":
		e.cipClose()
	default:
		e.err()
	}
}

// writer adapts respond for fmt.Fprintf.
func (e *ESP8266) writer() *txWriter { return (*txWriter)(e) }

type txWriter ESP8266

func (w *txWriter) Write(p []byte) (int, error) {
	e := (*ESP8266)(w)
	e.tx = append(e.tx, p...)
	return len(p), nil
}

func (e *ESP8266) reset() {
	e.joined = ""
	e.stationIP = ""
	e.echo = true
	e.mode = ModeStation
	e.cipClose()
	e.collecting = false
	e.rx = e.rx[:0]
}

func (e *ESP8266) setMode(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < ModeStation || n > ModeBoth {
		e.err()
		return
	}
	e.mode = n
	e.ok()
}

// unquote strips the AT protocol's double quotes.
func unquote(s string) string {
	return strings.Trim(s, "\"")
}

func (e *ESP8266) join(arg string) {
	parts := strings.SplitN(arg, ",", 2)
	if len(parts) != 2 {
		e.err()
		return
	}
	ssid, pass := unquote(parts[0]), unquote(parts[1])
	for _, ap := range e.aps {
		if ap.SSID != ssid {
			continue
		}
		if ap.Ecn != 0 && ap.Password != pass {
			e.respond("\r\n+CWJAP:1\r\n\r\nFAIL\r\n")
			return
		}
		e.joined = ssid
		e.stationIP = "192.168.4.2"
		e.respond("WIFI CONNECTED\r\nWIFI GOT IP\r\n")
		e.ok()
		return
	}
	e.respond("\r\n+CWJAP:3\r\n\r\nFAIL\r\n")
}

func (e *ESP8266) listAPs() {
	w := e.writer()
	for _, ap := range e.aps {
		fmt.Fprintf(w, "+CWLAP:(%d,%q,%d)\r\n", ap.Ecn, ap.SSID, ap.RSSI)
	}
	e.ok()
}

func (e *ESP8266) reportIP() {
	if e.stationIP == "" {
		e.err()
		return
	}
	fmt.Fprintf(e.writer(), "+CIFSR:STAIP,%q\r\n", e.stationIP)
	e.ok()
}

func (e *ESP8266) cipStart(arg string) {
	if e.conn != nil {
		e.respond("ALREADY CONNECTED\r\n")
		e.err()
		return
	}
	parts := strings.SplitN(arg, ",", 3)
	if len(parts) != 3 || strings.ToUpper(unquote(parts[0])) != "TCP" {
		e.err()
		return
	}
	host := unquote(parts[1])
	port, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		e.err()
		return
	}
	conn, err := e.dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		e.err()
		return
	}
	e.conn = conn
	e.respond("CONNECT\r\n")
	e.ok()
}

func (e *ESP8266) cipSend(arg string) {
	if e.conn == nil {
		e.err()
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 || n > 2048 {
		e.err()
		return
	}
	e.collecting = true
	e.collectLen = n
	e.collected = e.collected[:0]
	e.ok()
	e.respond("> ")
}

func (e *ESP8266) finishSend() {
	e.collecting = false
	if e.conn == nil {
		e.err()
		return
	}
	if _, err := e.conn.Write(e.collected); err != nil {
		e.cipClose()
		return
	}
	e.respond("\r\nSEND OK\r\n")
}

func (e *ESP8266) cipClose() {
	if e.conn == nil {
		return
	}
	e.conn.Close()
	e.conn = nil
	e.respond("CLOSED\r\n")
	e.ok()
}

// Poll drains pending connection data into +IPD notifications. Call
// once per frame.
func (e *ESP8266) Poll() {
	if e.conn == nil {
		return
	}
	e.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	buf := make([]byte, 1460)
	n, err := e.conn.Read(buf)
	if n > 0 {
		fmt.Fprintf(e.writer(), "\r\n+IPD,%d:", n)
		e.tx = append(e.tx, buf[:n]...)
	}
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return
		}
		e.cipClose()
	}
}

// Connected reports whether a TCP link is open.
func (e *ESP8266) Connected() bool { return e.conn != nil }

// Joined returns the SSID of the joined network, if any.
func (e *ESP8266) Joined() string { return e.joined }
