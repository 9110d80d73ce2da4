package conf

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/perlin-network/votedeploy/sys"
	"github.com/pkg/errors"
)

type config struct {
	// Network the deployment transaction is submitted to.
	rpcURL  string
	chainID uint64

	// Contract template lookup.
	artifactsDir string
	template     string

	// Constructor argument of the template.
	candidates []string

	// Deployer key. privateKey takes precedence over keyFile.
	privateKey string
	keyFile    string
	password   string

	// Zero lets the node estimate gas.
	gasLimit uint64

	confirmTimeout time.Duration
	pollInterval   time.Duration

	// Directory of the deployment history database. Empty disables history.
	dbDir string
}

var (
	l sync.RWMutex

	defaultConf = defaultConfig()
	c           = defaultConf
)

func defaultConfig() config {
	return config{
		rpcURL:         sys.DefaultRPC,
		artifactsDir:   sys.DefaultArtifactsDir,
		template:       sys.DefaultTemplate,
		candidates:     sys.DefaultCandidates(),
		confirmTimeout: sys.DefaultConfirmTimeout,
		pollInterval:   sys.DefaultPollInterval,
	}
}

type Option func(*config)

func WithRPCURL(url string) Option {
	return func(c *config) {
		c.rpcURL = url
	}
}

func WithChainID(id uint64) Option {
	return func(c *config) {
		c.chainID = id
	}
}

func WithArtifactsDir(dir string) Option {
	return func(c *config) {
		c.artifactsDir = dir
	}
}

func WithTemplate(name string) Option {
	return func(c *config) {
		c.template = name
	}
}

// WithCandidates replaces the candidate list. An empty list keeps the
// current one.
func WithCandidates(names ...string) Option {
	return func(c *config) {
		if len(names) == 0 {
			return
		}

		c.candidates = append([]string(nil), names...)
	}
}

func WithPrivateKey(hex string) Option {
	return func(c *config) {
		c.privateKey = hex
	}
}

func WithKeyFile(path, password string) Option {
	return func(c *config) {
		c.keyFile = path
		c.password = password
	}
}

func WithGasLimit(n uint64) Option {
	return func(c *config) {
		c.gasLimit = n
	}
}

func WithConfirmTimeout(d time.Duration) Option {
	return func(c *config) {
		c.confirmTimeout = d
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

func WithDBDir(dir string) Option {
	return func(c *config) {
		c.dbDir = dir
	}
}

func GetRPCURL() string {
	l.RLock()
	t := c.rpcURL
	l.RUnlock()

	return t
}

func GetChainID() uint64 {
	l.RLock()
	t := c.chainID
	l.RUnlock()

	return t
}

func GetArtifactsDir() string {
	l.RLock()
	t := c.artifactsDir
	l.RUnlock()

	return t
}

func GetTemplate() string {
	l.RLock()
	t := c.template
	l.RUnlock()

	return t
}

// GetCandidates returns a copy of the configured candidate list.
func GetCandidates() []string {
	l.RLock()
	t := append([]string(nil), c.candidates...)
	l.RUnlock()

	return t
}

func GetPrivateKey() string {
	l.RLock()
	t := c.privateKey
	l.RUnlock()

	return t
}

func GetKeyFile() (string, string) {
	l.RLock()
	path, password := c.keyFile, c.password
	l.RUnlock()

	return path, password
}

func GetGasLimit() uint64 {
	l.RLock()
	t := c.gasLimit
	l.RUnlock()

	return t
}

func GetConfirmTimeout() time.Duration {
	l.RLock()
	t := c.confirmTimeout
	l.RUnlock()

	return t
}

func GetPollInterval() time.Duration {
	l.RLock()
	t := c.pollInterval
	l.RUnlock()

	return t
}

func GetDBDir() string {
	l.RLock()
	t := c.dbDir
	l.RUnlock()

	return t
}

func Update(options ...Option) {
	l.Lock()

	for _, option := range options {
		option(&c)
	}

	l.Unlock()
}

// Validate reports the first setting that cannot be used for a deployment.
func Validate() error {
	l.RLock()
	defer l.RUnlock()

	if strings.TrimSpace(c.rpcURL) == "" {
		return errors.New("rpc url must not be empty")
	}

	if strings.TrimSpace(c.template) == "" {
		return errors.New("template name must not be empty")
	}

	for i, name := range c.candidates {
		if strings.TrimSpace(name) == "" {
			return errors.Errorf("candidate #%d has an empty name", i)
		}
	}

	if c.confirmTimeout <= 0 {
		return errors.Errorf("confirm timeout must be positive, got %s", c.confirmTimeout)
	}

	if c.pollInterval <= 0 {
		return errors.Errorf("poll interval must be positive, got %s", c.pollInterval)
	}

	if c.pollInterval > c.confirmTimeout {
		return errors.Errorf("poll interval %s exceeds confirm timeout %s", c.pollInterval, c.confirmTimeout)
	}

	return nil
}

func Stringify() string {
	l.RLock()
	s := fmt.Sprintf("%+v", redacted(c))
	l.RUnlock()

	return s
}

func redacted(conf config) config {
	if conf.privateKey != "" {
		conf.privateKey = "<redacted>"
	}

	if conf.password != "" {
		conf.password = "<redacted>"
	}

	return conf
}

func Reset() {
	l.Lock()
	c = defaultConfig()
	l.Unlock()
}
