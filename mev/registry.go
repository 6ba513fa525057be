package mev

import (
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"mevscan/config"
	"mevscan/logger"
	"mevscan/utils"
)

// Category labels what a known address is, so the detector never hardcodes
// program IDs in its logic.
type Category string

const (
	CategoryDex          Category = "dex"
	CategorySystem       Category = "system"
	CategoryMemo         Category = "memo"
	CategoryVote         Category = "vote"
	CategoryStake        Category = "stake"
	CategoryToken        Category = "token"
	CategorySysvar       Category = "sysvar"
	CategoryLoader       Category = "loader"
	CategoryMisc         Category = "misc"
	CategoryTipRecipient Category = "tip-recipient"
)

// Registry maps addresses to categories. Built once, read-only afterwards;
// safe to share across concurrent analyses.
type Registry struct {
	categories    map[string]Category
	tipRecipients []string
}

// Known swap/DEX program IDs shipped as defaults.
const (
	raydiumAmmProgram     = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	raydiumClmmProgram    = "CAMMCzo5YL8w4VFF8KVHrK22GGUQzGdR1qJRXgKhpNzc"
	orcaWhirlpoolsProgram = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	orcaV1Program         = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	serumDexProgram       = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	jupiterProgram        = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	pumpFunProgram        = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

	memoV1Program = "Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDgQdddcxFr"

	metaplexAuctionHouseProgram = "hausS13jsjafwWwGqZTUQRmWyvyxn9EQpqMwV1PBBmk"
	tokenMetadataProgram        = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	bpfLoaderUpgradeableProgram = "BPFLoaderUpgradeab1e11111111111111111111111"
	featureProgram              = "Feature111111111111111111111111111111111111"
	addressLookupTableProgram   = "AddressLookupTab1e1111111111111111111111111"
)

// Jito relayer tip accounts shipped as defaults.
var defaultTipRecipients = []string{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iAVflbD",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxG3tMK1dpv2vZeDbemFDF",
	"GGcvCardiohRDPcsyTuyNzTTBEsszS6b6X9dCg12N66X",
}

// NewRegistry builds a registry with the compiled-in defaults.
func NewRegistry() *Registry {
	r := &Registry{categories: make(map[string]Category)}

	for _, p := range []string{
		raydiumAmmProgram, raydiumClmmProgram, orcaWhirlpoolsProgram,
		orcaV1Program, serumDexProgram, jupiterProgram, pumpFunProgram,
	} {
		r.categories[p] = CategoryDex
	}

	r.categories[solana.SystemProgramID.String()] = CategorySystem
	r.categories[solana.MemoProgramID.String()] = CategoryMemo
	r.categories[memoV1Program] = CategoryMemo
	r.categories[solana.VoteProgramID.String()] = CategoryVote
	r.categories[solana.StakeProgramID.String()] = CategoryStake

	r.categories[solana.TokenProgramID.String()] = CategoryToken
	r.categories[solana.Token2022ProgramID.String()] = CategoryToken
	r.categories[solana.SPLAssociatedTokenAccountProgramID.String()] = CategoryToken
	r.categories[solana.SolMint.String()] = CategoryToken

	for _, p := range []string{
		solana.SysVarRentPubkey.String(),
		solana.SysVarClockPubkey.String(),
		solana.SysVarRecentBlockHashesPubkey.String(),
		solana.SysVarEpochSchedulePubkey.String(),
		solana.SysVarFeesPubkey.String(),
		solana.SysVarSlotHashesPubkey.String(),
		solana.SysVarSlotHistoryPubkey.String(),
		solana.SysVarStakeHistoryPubkey.String(),
	} {
		r.categories[p] = CategorySysvar
	}

	for _, p := range []string{
		solana.BPFLoaderProgramID.String(),
		solana.BPFLoaderDeprecatedProgramID.String(),
		bpfLoaderUpgradeableProgram,
	} {
		r.categories[p] = CategoryLoader
	}

	for _, p := range []string{
		solana.ConfigProgramID.String(),
		solana.ComputeBudget.String(),
		featureProgram,
		addressLookupTableProgram,
		tokenMetadataProgram,
		metaplexAuctionHouseProgram,
	} {
		r.categories[p] = CategoryMisc
	}

	for _, a := range defaultTipRecipients {
		r.categories[a] = CategoryTipRecipient
		r.tipRecipients = append(r.tipRecipients, a)
	}

	return r
}

// NewRegistryFromViper overlays programs.yaml entries on the defaults, so
// program lists can be updated without a rebuild. Expected layout:
//
//	programs:
//	  dex:
//	    - <address>
//	  tip-recipient:
//	    - <address>
func NewRegistryFromViper() *Registry {
	v := viper.New()
	v.SetConfigName("programs")
	v.SetConfigType("yaml")
	v.AddConfigPath(config.ConfigPath)

	r := NewRegistry()
	if err := v.ReadInConfig(); err != nil {
		logger.GlobalLogger.Warn("No programs.yaml overlay found, using built-in program registry", "err", err)
		return r
	}

	for _, cat := range []Category{
		CategoryDex, CategorySystem, CategoryMemo, CategoryVote,
		CategoryStake, CategoryToken, CategorySysvar, CategoryLoader,
		CategoryMisc, CategoryTipRecipient,
	} {
		for _, addr := range v.GetStringSlice("programs." + string(cat)) {
			addr = strings.TrimSpace(addr)
			if addr == "" {
				continue
			}
			r.categories[addr] = cat
			if cat == CategoryTipRecipient && !utils.HasString(r.tipRecipients, addr) {
				r.tipRecipients = append(r.tipRecipients, addr)
			}
		}
	}
	return r
}

// CategoryOf returns the category of a known address.
func (r *Registry) CategoryOf(address string) (Category, bool) {
	c, ok := r.categories[address]
	return c, ok
}

func (r *Registry) IsDexProgram(address string) bool {
	return r.categories[address] == CategoryDex
}

func (r *Registry) IsSystemProgram(address string) bool {
	return r.categories[address] == CategorySystem
}

func (r *Registry) IsMemoProgram(address string) bool {
	return r.categories[address] == CategoryMemo
}

func (r *Registry) IsVoteOrStake(address string) bool {
	c := r.categories[address]
	return c == CategoryVote || c == CategoryStake
}

func (r *Registry) IsTipRecipient(address string) bool {
	return r.categories[address] == CategoryTipRecipient
}

// TipRecipients returns the known relayer tip addresses.
func (r *Registry) TipRecipients() []string {
	return r.tipRecipients
}
