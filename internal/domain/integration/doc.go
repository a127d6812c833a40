// Package integration contains the ports to the external platforms the
// marketplace talks to.
//
// Key concepts:
//   - ChannelManager / ChannelTypeCatalog / ProjectServices: the channel
//     orchestration backend (flows)
//   - WABAManager / TemplateManager / CommerceManager: the Facebook Graph API
//   - CommercePlatform: the VTEX store API
//   - ExternalAPIError: a non-success upstream response, body preserved
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
