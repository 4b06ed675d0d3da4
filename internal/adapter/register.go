// Package adapter wires every provider integration into the registry and
// binds login flows to the session manager.
package adapter

import (
	"github.com/jinbangyi/apikey-usage-inspector/internal/adapter/birdeye"
	"github.com/jinbangyi/apikey-usage-inspector/internal/adapter/cmc"
	"github.com/jinbangyi/apikey-usage-inspector/internal/adapter/coingecko"
	"github.com/jinbangyi/apikey-usage-inspector/internal/adapter/openai"
	"github.com/jinbangyi/apikey-usage-inspector/internal/adapter/quicknode"
	"github.com/jinbangyi/apikey-usage-inspector/internal/adapter/twitterapi"
	"github.com/jinbangyi/apikey-usage-inspector/internal/httpx"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
	"github.com/jinbangyi/apikey-usage-inspector/internal/session"
)

func RegisterAll(r *provider.Registry, m *session.Manager, httpc *httpx.Client, solver session.CaptchaSolver) {
	qn := quicknode.New(httpc)
	cg := coingecko.New(httpc)
	tw := twitterapi.New(httpc)
	oa := openai.New(httpc)
	be := birdeye.New(httpc)
	cc := cmc.New(httpc)

	r.Register(qn)
	r.Register(cg)
	r.Register(tw)
	r.Register(oa)
	r.Register(be)
	r.Register(cc)

	m.RegisterAuthenticator(be.ID(), birdeye.NewAuthenticator(httpc))
	m.RegisterAuthenticator(cc.ID(), cmc.NewAuthenticator(httpc, solver))
}
