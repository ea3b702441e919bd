package affiliate

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Rule injects Param=ID into links of one store domain.
type Rule struct {
	Domain string `yaml:"domain"`
	Param  string `yaml:"param"`
	ID     string `yaml:"id"`
}

var DefaultRules = []Rule{
	{Domain: "amazon.com", Param: "tag", ID: "ai-shop-20"},
	{Domain: "ebay.com", Param: "_sasl", ID: "ai-shop-assistant-20"},
	{Domain: "bestbuy.com", Param: "siteID", ID: "bb-ai-shop"},
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule table. An empty path yields DefaultRules.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read affiliate rules: %w", err)
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode affiliate rules: %w", err)
	}
	for i, rule := range file.Rules {
		if rule.Domain == "" || rule.Param == "" || rule.ID == "" {
			return nil, fmt.Errorf("affiliate rule %d: domain, param and id are required", i)
		}
	}
	return file.Rules, nil
}

type Rewriter struct {
	rules  map[string]Rule
	logger *zap.Logger
}

func NewRewriter(rules []Rule, logger *zap.Logger) *Rewriter {
	byDomain := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		byDomain[strings.ToLower(strings.TrimPrefix(rule.Domain, "www."))] = rule
	}
	logger.Info("affiliate rewriter initialized", zap.Int("rules", len(byDomain)))
	return &Rewriter{rules: byDomain, logger: logger}
}

// Rewrite never fails: unknown domains and malformed URLs come back unchanged.
func (r *Rewriter) Rewrite(productURL string) string {
	parsed, err := url.Parse(productURL)
	if err != nil || parsed.Host == "" {
		r.logger.Debug("affiliate rewrite skipped, unparsable url", zap.String("url", productURL), zap.Error(err))
		return productURL
	}

	domain := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	rule, ok := r.rules[domain]
	if !ok {
		r.logger.Debug("no affiliate rule for domain", zap.String("domain", domain))
		return productURL
	}

	query := parsed.Query()
	query.Set(rule.Param, rule.ID)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
