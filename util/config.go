package util

import (
	"math/big"
	"os"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

func LoadConfig(path string, config interface{}) {
	buf, err := os.ReadFile(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{"err": err, "path": path}).Fatal("fail to read config")
	}

	if err = yaml.Unmarshal(buf, config); err != nil {
		logrus.WithField("err", err).Fatal("fail to parse config yaml")
	}
}

func ToNumeric(i *big.Int) decimal.Decimal {
	num := decimal.NewFromBigInt(i, 0)
	return num
}

// FormatAmount renders an amount of base units in whole tokens, e.g.
// 1500000 with 6 decimals is "1.5".
func FormatAmount(amount sdkmath.Uint, decimals int32) string {
	if amount.IsNil() {
		return "0"
	}
	return ToNumeric(amount.BigInt()).Shift(-decimals).String()
}
