package gateway

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
)

func NewProviders(cfg config.Config, clk clock.Clock) []commands.PaymentProvider {
	return []commands.PaymentProvider{
		NewMoMoProvider(cfg.Gateway.MoMo, cfg.Gateway),
		NewVNPayProvider(cfg.Gateway.VNPay, cfg.Gateway, clk),
	}
}

func NewParsers(cfg config.Config) []commands.CallbackParser {
	return []commands.CallbackParser{
		NewMoMoParser(cfg.Gateway.MoMo),
		NewVNPayParser(cfg.Gateway.VNPay),
	}
}
