// Package schedulerclient builds a scheduler.Client for the Cloud Foundry
// Scheduler API.
//
//	cli, err := schedulerclient.New(ctx, &scheduler.Config{
//	  Endpoint:     "https://scheduler.sys.example.com",
//	  APIEndpoint:  "https://api.sys.example.com",
//	  ClientID:     "client-id",
//	  ClientSecret: "client-secret",
//	})
//	if err != nil { log.Fatal(err) }
//
//	for job, err := range cli.Jobs().ListAll(ctx, spaceGUID) {
//	  if err != nil { log.Fatal(err) }
//	  fmt.Println(job.Name)
//	}
//
// When a grant is configured without Config.TokenURL, New reads the Cloud
// Foundry API root at APIEndpoint and uses the UAA (or login) link to build the
// token URL. Endpoints without a scheme default to https.
//
// # TLS and development mode
//
// Config.SkipTLSVerify is refused unless SCHEDULER_DEV_MODE is "true" or "1".
package schedulerclient
