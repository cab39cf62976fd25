// Package genesis describes and deploys the initial ledger state of a node:
// the signature transfer service, tokens, the account factory and routers.
package genesis

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/cyphera/remote-accounts/internal/factory"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/permit2"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/cyphera/remote-accounts/internal/router"
	"github.com/cyphera/remote-accounts/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Genesis is the YAML description of the initial state.
type Genesis struct {
	ChainID     uint64            `yaml:"chain_id"`
	SourceChain string            `yaml:"source_chain"`
	Authority   common.Address    `yaml:"authority"`
	Gateway     common.Address    `yaml:"gateway"`
	Deployer    common.Address    `yaml:"deployer"`
	Time        uint64            `yaml:"time"`
	Permit2     *common.Address   `yaml:"permit2,omitempty"`
	Factory     FactorySpec       `yaml:"factory"`
	Routers     []RouterSpec      `yaml:"routers"`
	Tokens      []TokenSpec       `yaml:"tokens"`
	Balances    map[string]string `yaml:"balances"`
}

// FactorySpec places the account factory.
type FactorySpec struct {
	Address   common.Address `yaml:"address"`
	Principal string         `yaml:"principal"`
}

// RouterSpec places one router. The first router owns the factory.
type RouterSpec struct {
	Address   common.Address `yaml:"address"`
	Isolation string         `yaml:"isolation"`
}

// TokenSpec places a token and its initial balances.
type TokenSpec struct {
	Address  common.Address    `yaml:"address"`
	Name     string            `yaml:"name"`
	Symbol   string            `yaml:"symbol"`
	Decimals uint8             `yaml:"decimals"`
	Minter   common.Address    `yaml:"minter"`
	Balances map[string]string `yaml:"balances"`
}

// Deployment records where everything ended up.
type Deployment struct {
	ChainID          *big.Int
	SourceChain      string
	Authority        common.Address
	Gateway          common.Address
	Permit2          common.Address
	Factory          common.Address
	FactoryPrincipal principal.Identity
	Routers          []common.Address
	Tokens           map[string]common.Address
}

// Router returns the primary router, the one owning the factory.
func (d *Deployment) Router() common.Address {
	return d.Routers[0]
}

// Load reads a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates genesis YAML.
func Parse(data []byte) (*Genesis, error) {
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks the description is deployable.
func (g *Genesis) Validate() error {
	var errs []error
	if g.ChainID == 0 {
		errs = append(errs, errors.New("chain_id is required"))
	}
	if g.SourceChain == "" {
		errs = append(errs, errors.New("source_chain is required"))
	}
	if g.Authority == (common.Address{}) {
		errs = append(errs, errors.New("authority is required"))
	}
	if g.Gateway == (common.Address{}) {
		errs = append(errs, errors.New("gateway is required"))
	}
	if g.Factory.Address == (common.Address{}) {
		errs = append(errs, errors.New("factory.address is required"))
	}
	if _, err := principal.Parse(g.Factory.Principal); err != nil {
		errs = append(errs, fmt.Errorf("factory.principal: %w", err))
	}
	if len(g.Routers) == 0 {
		errs = append(errs, errors.New("at least one router is required"))
	}
	seen := map[common.Address]bool{g.Factory.Address: true}
	for i, r := range g.Routers {
		if _, err := router.ParseIsolation(r.Isolation); err != nil {
			errs = append(errs, fmt.Errorf("routers[%d]: %w", i, err))
		}
		if seen[r.Address] {
			errs = append(errs, fmt.Errorf("routers[%d]: address %s used twice", i, r.Address.Hex()))
		}
		seen[r.Address] = true
	}
	for i, t := range g.Tokens {
		if seen[t.Address] {
			errs = append(errs, fmt.Errorf("tokens[%d]: address %s used twice", i, t.Address.Hex()))
		}
		seen[t.Address] = true
		for holder, amount := range t.Balances {
			if _, err := parseAmount(amount); err != nil || !common.IsHexAddress(holder) {
				errs = append(errs, fmt.Errorf("tokens[%d]: invalid balance %s=%s", i, holder, amount))
			}
		}
	}
	for holder, amount := range g.Balances {
		if _, err := parseAmount(amount); err != nil || !common.IsHexAddress(holder) {
			errs = append(errs, fmt.Errorf("invalid native balance %s=%s", holder, amount))
		}
	}
	return errors.Join(errs...)
}

// Deploy installs the genesis contracts into l.
func Deploy(l *ledger.Ledger, g *Genesis) (*Deployment, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	log := logger.Log
	if log == nil {
		log = zap.NewNop()
	}

	fp, _ := principal.Parse(g.Factory.Principal)
	d := &Deployment{
		ChainID:          new(big.Int).SetUint64(g.ChainID),
		SourceChain:      g.SourceChain,
		Authority:        g.Authority,
		Gateway:          g.Gateway,
		Permit2:          permit2.Address,
		Factory:          g.Factory.Address,
		FactoryPrincipal: fp,
		Tokens:           make(map[string]common.Address),
	}
	if g.Permit2 != nil {
		d.Permit2 = *g.Permit2
	}
	if g.Time != 0 {
		l.SetTime(g.Time)
	}
	deployer := g.Deployer
	if deployer == (common.Address{}) {
		deployer = g.Authority
	}

	if err := l.Install(deployer, d.Permit2, permit2.Code, permit2.New(d.ChainID)); err != nil {
		return nil, fmt.Errorf("failed to install permit2: %w", err)
	}

	for _, tok := range g.Tokens {
		minter := tok.Minter
		if minter == (common.Address{}) {
			minter = deployer
		}
		if err := l.Install(minter, tok.Address, token.Code, token.New(tok.Name, tok.Symbol, tok.Decimals)); err != nil {
			return nil, fmt.Errorf("failed to install token %s: %w", tok.Symbol, err)
		}
		if err := mintBalances(l, tok.Address, minter, tok.Balances); err != nil {
			return nil, fmt.Errorf("failed to mint %s: %w", tok.Symbol, err)
		}
		d.Tokens[tok.Symbol] = tok.Address
	}

	// The factory constructor makes its deployer the owner, so the primary
	// router deploys it.
	primary := g.Routers[0].Address
	if err := l.Install(primary, d.Factory, factory.Code, factory.New(fp)); err != nil {
		return nil, fmt.Errorf("failed to install factory: %w", err)
	}

	for _, rc := range g.Routers {
		isolation, _ := router.ParseIsolation(rc.Isolation)
		r := router.New(router.Config{
			SourceChain:       g.SourceChain,
			Authority:         g.Authority,
			Gateway:           g.Gateway,
			Factory:           d.Factory,
			SignatureTransfer: d.Permit2,
			Isolation:         isolation,
		})
		if err := l.Install(deployer, rc.Address, router.Code, r); err != nil {
			return nil, fmt.Errorf("failed to install router %s: %w", rc.Address.Hex(), err)
		}
		d.Routers = append(d.Routers, rc.Address)
	}

	for holder, amount := range g.Balances {
		v, _ := parseAmount(amount)
		l.Mint(common.HexToAddress(holder), v)
	}

	log.Info("Genesis deployed",
		logger.SourceChain(d.SourceChain),
		logger.Factory(d.Factory),
		zap.String("factory_principal", fp.String()),
		logger.Router(primary),
		zap.Int("routers", len(d.Routers)),
		zap.Int("tokens", len(d.Tokens)),
	)
	return d, nil
}

func mintBalances(l *ledger.Ledger, tokenAddr, minter common.Address, balances map[string]string) error {
	if len(balances) == 0 {
		return nil
	}
	receipt := l.Transact(minter, func(f *ledger.Frame) error {
		return ledger.Invoke(f, tokenAddr, func(t *token.Token, callee *ledger.Frame) error {
			for holder, amount := range balances {
				v, _ := parseAmount(amount)
				if err := t.Mint(callee, common.HexToAddress(holder), v); err != nil {
					return err
				}
			}
			return nil
		})
	})
	return receipt.Err
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// Local returns the genesis used by local and test stages.
func Local() *Genesis {
	return &Genesis{
		ChainID:     31337,
		SourceChain: "chain",
		Authority:   common.HexToAddress("0x00000000000000000000000000000000000a0001"),
		Gateway:     common.HexToAddress("0x00000000000000000000000000000000000a0002"),
		Factory: FactorySpec{
			Address:   common.HexToAddress("0x00000000000000000000000000000000000f0001"),
			Principal: "chain:manager",
		},
		Routers: []RouterSpec{
			{Address: common.HexToAddress("0x00000000000000000000000000000000000b0001")},
			{Address: common.HexToAddress("0x00000000000000000000000000000000000b0002")},
		},
		Tokens: []TokenSpec{
			{
				Address:  common.HexToAddress("0x00000000000000000000000000000000000c0001"),
				Name:     "USD Coin",
				Symbol:   "USDC",
				Decimals: 6,
			},
		},
	}
}
