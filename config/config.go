package config

var Cfg Conf

type Conf struct {
	Port          int       `yaml:"port"`
	DbTailFix     string    `yaml:"db_tail_fix"`
	DbPath        string    `yaml:"db_path"` // overrides db_tail_fix when set
	AccountPrefix string    `yaml:"account_prefix"`
	LedgerAccount string    `yaml:"ledger_account"`
	SnapshotSpec  string    `yaml:"snapshot_spec"`
	Token         TokenConf `yaml:"token"`
	Log           LogConf   `yaml:"log"`
}

type TokenConf struct {
	ID       string        `yaml:"id"`
	Symbol   string        `yaml:"symbol"`
	Decimals int32         `yaml:"decimals"`
	Genesis  []GenesisConf `yaml:"genesis"`
}

type GenesisConf struct {
	Account string `yaml:"account"`
	Amount  string `yaml:"amount"`
}

type LogConf struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}
