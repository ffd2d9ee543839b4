// Package governor wires the quota packages into one Kit.
//
// New connects the configured store backend (memory, postgres, redis or
// mongo), applies the postgres migrations or mongo indexes, builds the shared
// usage cache with its purger, the limit factory from the built-in table or a
// YAML file, the usage tracker, the notification pipeline and the usage
// reconciler. Providers for individual organizations come from
// Kit.NewProvider and share all of it.
//
//	cfg, err := governor.LoadConfig()
//	if err != nil {
//		return err
//	}
//	kit, err := governor.New(ctx, cfg, governor.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer kit.Close()
//
//	p := kit.NewProvider(orgAdmins)
//	err = p.SetOrganization(ctx, orgID)
package governor
