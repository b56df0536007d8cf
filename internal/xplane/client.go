// Package xplane implements the host port against a running X-Plane over
// its UDP interface: values are read through RREF subscriptions, written
// with DREF and commands are sent with CMND.
//
// The UDP interface cannot tell whether a dataref or command exists, so
// every lookup resolves. Plugin presence is not observable either and comes
// from configuration.
package xplane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path"
	"strings"
	"sync"
	"time"

	"acfkit/internal/xplm"
)

// AircraftPathDataRef holds the user aircraft path relative to the X-Plane
// folder.
const AircraftPathDataRef = "sim/aircraft/view/acf_relative_path"

var errStale = errors.New("no data received")

// Config configures a Client.
type Config struct {
	// Addr is the simulator UDP address, host:port.
	Addr string
	// LocalAddr optionally fixes the local address responses come back to.
	LocalAddr string
	// Frequency is the RREF rate in packets per second.
	Frequency int
	// Plugins are the signatures reported as loaded.
	Plugins []string
	// MaxBytes caps how many elements of a byte array field are
	// subscribed; later bytes read as zero.
	MaxBytes int
	// StaleAfter triggers a resubscription when no data arrived for that
	// long.
	StaleAfter time.Duration
	Logger     *slog.Logger
}

type command struct {
	name     string
	local    bool
	handlers []handlerEntry
}

type handlerEntry struct {
	id     int
	before bool
	h      xplm.CommandHandler
}

// Client is an xplm.Host backed by the X-Plane UDP interface. It is safe
// for concurrent use; values are updated by Run in the background.
type Client struct {
	cfg          Config
	log          *slog.Logger
	retryBackoff time.Duration
	maxBackoff   time.Duration

	mu       sync.Mutex
	conn     *net.UDPConn
	refs     []string
	refIndex map[string]xplm.DataRef
	subs     map[string]int32
	subOrder []string
	values   map[int32]float32
	lastRecv time.Time

	commands     []*command
	commandIndex map[string]xplm.CommandRef
	nextHandler  int
	plugins      map[string]bool
}

var _ xplm.Host = (*Client)(nil)

// NewClient creates a client; Run connects it.
func NewClient(cfg Config) *Client {
	if cfg.Frequency <= 0 {
		cfg.Frequency = 5
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 128
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	plugins := make(map[string]bool, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		plugins[p] = true
	}
	return &Client{
		cfg:          cfg,
		log:          log.With("component", "xplane"),
		retryBackoff: 1 * time.Second,
		maxBackoff:   30 * time.Second,
		refIndex:     make(map[string]xplm.DataRef),
		subs:         make(map[string]int32),
		values:       make(map[int32]float32),
		commandIndex: make(map[string]xplm.CommandRef),
		plugins:      plugins,
	}
}

// connect opens the socket and replays every subscription.
func (c *Client) connect() error {
	raddr, err := net.ResolveUDPAddr("udp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("resolve addr: %w", err)
	}
	var laddr *net.UDPAddr
	if c.cfg.LocalAddr != "" {
		if laddr, err = net.ResolveUDPAddr("udp", c.cfg.LocalAddr); err != nil {
			return fmt.Errorf("resolve local addr: %w", err)
		}
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return fmt.Errorf("dial udp: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.lastRecv = time.Now()
	for _, key := range c.subOrder {
		c.sendRREF(int32(c.cfg.Frequency), c.subs[key], key)
	}
	return nil
}

// Run keeps the client connected until ctx is cancelled, resubscribing
// with exponential backoff whenever the simulator stops answering.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.retryBackoff
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		if conn == nil {
			if err := c.connect(); err != nil {
				c.log.Warn("Failed to connect to X-Plane", "addr", c.cfg.Addr, "error", err)
				if !sleep(ctx, backoff) {
					return ctx.Err()
				}
				backoff = min(backoff*2, c.maxBackoff)
				continue
			}
			c.log.Info("Connected to X-Plane", "addr", c.cfg.Addr, "subscriptions", c.subscriptions())
			continue
		}

		received, err := c.readPackets(ctx, conn)
		if err == nil {
			return ctx.Err()
		}
		if received {
			backoff = c.retryBackoff
		}
		c.log.Warn("X-Plane connection lost, reconnecting", "error", err, "retry_in", backoff)
		c.closeConnection()
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// readPackets reads responses until ctx is done (nil error) or the link
// fails. received reports whether any response arrived.
func (c *Client) readPackets(ctx context.Context, conn *net.UDPConn) (received bool, err error) {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return received, nil
		}
		if err := conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			return received, fmt.Errorf("failed to set read deadline: %w", err)
		}
		n, err := conn.Read(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if c.stale() {
					return received, errStale
				}
				continue
			}
			return received, fmt.Errorf("failed to read: %w", err)
		}
		if Label(buf[:n]) != LabelRREF {
			continue
		}
		values, err := ParseRREF(buf[:n])
		if err != nil {
			c.log.Debug("Failed to parse RREF packet", "error", err)
			continue
		}
		received = true
		c.mu.Lock()
		c.lastRecv = time.Now()
		for _, v := range values {
			c.values[v.Index] = v.Value
		}
		c.mu.Unlock()
	}
}

func (c *Client) stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs) > 0 && time.Since(c.lastRecv) > c.cfg.StaleAfter
}

func (c *Client) subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Client) closeConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Close cancels every subscription and closes the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	for _, key := range c.subOrder {
		c.sendRREF(0, c.subs[key], key)
	}
	c.mu.Unlock()
	c.closeConnection()
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// send writes one packet; c.mu must be held. Packets sent while
// disconnected are dropped.
func (c *Client) send(pkt []byte) {
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write(pkt); err != nil {
		c.log.Debug("Failed to send packet", "label", Label(pkt), "error", err)
	}
}

func (c *Client) sendRREF(freq, index int32, key string) {
	pkt, err := EncodeRREF(freq, index, key)
	if err != nil {
		c.log.Debug("Cannot subscribe", "dataref", key, "error", err)
		return
	}
	c.send(pkt)
}

// subscribe returns the RREF index of key, subscribing on first use. c.mu
// must be held.
func (c *Client) subscribe(key string) int32 {
	if idx, ok := c.subs[key]; ok {
		return idx
	}
	idx := int32(len(c.subOrder))
	c.subs[key] = idx
	c.subOrder = append(c.subOrder, key)
	c.sendRREF(int32(c.cfg.Frequency), idx, key)
	return idx
}

// read returns the latest value of key; zero until the first response.
func (c *Client) read(key string) float32 {
	return c.values[c.subscribe(key)]
}

// write sends a DREF and updates the cached value so reads see it at once.
func (c *Client) write(key string, v float32) {
	pkt, err := EncodeDREF(key, v)
	if err != nil {
		c.log.Debug("Cannot write", "dataref", key, "error", err)
		return
	}
	c.send(pkt)
	if idx, ok := c.subs[key]; ok {
		c.values[idx] = v
	}
}

func (c *Client) name(ref xplm.DataRef) (string, bool) {
	if !ref.Valid() || int(ref) > len(c.refs) {
		return "", false
	}
	return c.refs[ref-1], true
}

func element(name string, i int) string { return fmt.Sprintf("%s[%d]", name, i) }

func (c *Client) FindDataRef(name string) xplm.DataRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ref, ok := c.refIndex[name]; ok {
		return ref
	}
	c.refs = append(c.refs, name)
	ref := xplm.DataRef(len(c.refs))
	c.refIndex[name] = ref
	return ref
}

func (c *Client) GetInt(ref xplm.DataRef) int { return int(c.GetFloat(ref)) }

func (c *Client) SetInt(ref xplm.DataRef, v int) { c.SetFloat(ref, float32(v)) }

func (c *Client) GetFloat(ref xplm.DataRef) float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.name(ref)
	if !ok {
		return 0
	}
	return c.read(name)
}

func (c *Client) SetFloat(ref xplm.DataRef, v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := c.name(ref); ok {
		c.write(name, v)
	}
}

func (c *Client) GetIntArray(ref xplm.DataRef, dst []int, offset int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.name(ref)
	if !ok || offset < 0 {
		return 0
	}
	for i := range dst {
		dst[i] = int(c.read(element(name, offset+i)))
	}
	return len(dst)
}

func (c *Client) GetFloatArray(ref xplm.DataRef, dst []float32, offset int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.name(ref)
	if !ok || offset < 0 {
		return 0
	}
	for i := range dst {
		dst[i] = c.read(element(name, offset+i))
	}
	return len(dst)
}

func (c *Client) SetFloatArray(ref xplm.DataRef, src []float32, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.name(ref)
	if !ok || offset < 0 {
		return
	}
	for i, v := range src {
		c.write(element(name, offset+i), v)
	}
}

// GetBytes reads up to MaxBytes elements of a byte array field.
func (c *Client) GetBytes(ref xplm.DataRef, dst []byte, offset int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.name(ref)
	if !ok || offset < 0 {
		return 0
	}
	for i := range dst {
		if offset+i >= c.cfg.MaxBytes {
			dst[i] = 0
			continue
		}
		dst[i] = byte(int(c.read(element(name, offset+i))))
	}
	return len(dst)
}

func (c *Client) SetBytes(ref xplm.DataRef, src []byte, offset int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.name(ref)
	if !ok || offset < 0 {
		return
	}
	for i, b := range src {
		c.write(element(name, offset+i), float32(b))
	}
}

func (c *Client) FindCommand(name string) xplm.CommandRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(name, false)
}

// CreateCommand registers a command handled only by this process; it can
// be run through the client but the simulator never sees it.
func (c *Client) CreateCommand(name, description string) xplm.CommandRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.command(name, true)
}

func (c *Client) command(name string, local bool) xplm.CommandRef {
	if ref, ok := c.commandIndex[name]; ok {
		if local {
			c.commands[ref-1].local = true
		}
		return ref
	}
	c.commands = append(c.commands, &command{name: name, local: local})
	ref := xplm.CommandRef(len(c.commands))
	c.commandIndex[name] = ref
	return ref
}

func (c *Client) lookupCommand(ref xplm.CommandRef) *command {
	if !ref.Valid() || int(ref) > len(c.commands) {
		return nil
	}
	return c.commands[ref-1]
}

func (c *Client) RegisterCommandHandler(ref xplm.CommandRef, before bool, h xplm.CommandHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	cmd := c.lookupCommand(ref)
	if cmd == nil || h == nil {
		return func() {}
	}
	c.nextHandler++
	id := c.nextHandler
	cmd.handlers = append(cmd.handlers, handlerEntry{id: id, before: before, h: h})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, e := range cmd.handlers {
			if e.id == id {
				cmd.handlers = append(cmd.handlers[:i], cmd.handlers[i+1:]...)
				return
			}
		}
	}
}

// handle runs the handlers of ref for phase without holding the lock and
// reports whether the command should go on to the simulator.
func (c *Client) handle(ref xplm.CommandRef, phase xplm.Phase) (*command, bool) {
	c.mu.Lock()
	cmd := c.lookupCommand(ref)
	if cmd == nil {
		c.mu.Unlock()
		return nil, false
	}
	handlers := append([]handlerEntry(nil), cmd.handlers...)
	c.mu.Unlock()

	for _, before := range []bool{true, false} {
		for _, e := range handlers {
			if e.before == before && !e.h(ref, phase) {
				return cmd, false
			}
		}
	}
	return cmd, !cmd.local
}

func (c *Client) sendCommand(cmd *command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send(EncodeCMND(cmd.name))
}

func (c *Client) CommandOnce(ref xplm.CommandRef) {
	cmd, fwd := c.handle(ref, xplm.PhaseBegin)
	if cmd == nil {
		return
	}
	if fwd {
		c.sendCommand(cmd)
	}
	c.handle(ref, xplm.PhaseEnd)
}

// CommandBegin sends the command once; the UDP interface cannot hold it.
func (c *Client) CommandBegin(ref xplm.CommandRef) {
	if cmd, fwd := c.handle(ref, xplm.PhaseBegin); fwd {
		c.sendCommand(cmd)
	}
}

func (c *Client) CommandEnd(ref xplm.CommandRef) { c.handle(ref, xplm.PhaseEnd) }

func (c *Client) FindPluginBySignature(signature string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plugins[signature]
}

// UserAircraftModel returns the file name and the relative aircraft path
// the simulator publishes, with forward slashes.
func (c *Client) UserAircraftModel() (string, string) {
	ref := c.FindDataRef(AircraftPathDataRef)
	p := xplm.ReadString(c, ref, xplm.PathSize)
	if p == "" {
		return "", ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Base(p), p
}
