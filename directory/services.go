package directory

import (
	"net/url"

	"github.com/ledgerfoundry/ledgergate/domain"
	"github.com/ledgerfoundry/ledgergate/plugin"
)

// Well-known service names present in every agent's service map.
const (
	ServiceStatus     = "status"
	ServiceConfig     = "config"
	ServiceOperations = "operations"
	ServiceEvents     = "events"
	ServiceBlocks     = "blocks"
	ServiceQuery      = "query"
)

// serviceMap computes the externally addressable endpoints for a
// record: the six well-known services plus one entry per plugin, keyed
// by the plugin's declared service type. Plugin descriptors are
// re-resolved on every call; they may change between process restarts.
func (d *Directory) serviceMap(record *domain.Agent) (map[string]domain.ServiceEndpoint, error) {
	statusURL := d.baseURL + "/" + url.PathEscape(record.AgentID)

	service := map[string]domain.ServiceEndpoint{
		ServiceStatus:     {URL: statusURL},
		ServiceConfig:     {URL: statusURL + "/config"},
		ServiceOperations: {URL: statusURL + "/operations"},
		ServiceEvents:     {URL: statusURL + "/events"},
		ServiceBlocks:     {URL: statusURL + "/blocks"},
		ServiceQuery:      {URL: statusURL + "/query"},
	}

	for _, name := range record.Plugins {
		p, err := d.resolvePlugin(name)
		if err != nil {
			return nil, err
		}
		service[p.ServiceType()] = domain.ServiceEndpoint{
			URL:  statusURL + "/plugins/" + plugin.NormalizeName(name),
			Type: p.ServiceType(),
		}
	}

	return service, nil
}
