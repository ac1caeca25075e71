package repository

// requestView pairs the two pre-declared views backing one
// (cloud, resource_type) combination.
type requestView struct {
	Requests  string
	SGIngress string
}

// viewRegistry is the closed set of supported (cloud, resource_type) pairs.
// cloud_id and resource_type arrive from the request payload and are never
// interpolated into SQL; lookups outside this registry fail closed before
// any query is built.
var viewRegistry = map[string]map[string]requestView{
	"aws": {
		"rds": {Requests: "v_aws_rds_requests", SGIngress: "v_aws_rds_requests_sg_ingress"},
		"ec2": {Requests: "v_aws_ec2_requests", SGIngress: "v_aws_ec2_requests_sg_ingress"},
		"s3":  {Requests: "v_aws_s3_requests", SGIngress: "v_aws_s3_requests_sg_ingress"},
	},
	"gcp": {
		"cloudsql": {Requests: "v_gcp_cloudsql_requests", SGIngress: "v_gcp_cloudsql_requests_sg_ingress"},
		"gce":      {Requests: "v_gcp_gce_requests", SGIngress: "v_gcp_gce_requests_sg_ingress"},
	},
	"azure": {
		"vm":    {Requests: "v_azure_vm_requests", SGIngress: "v_azure_vm_requests_sg_ingress"},
		"sqldb": {Requests: "v_azure_sqldb_requests", SGIngress: "v_azure_sqldb_requests_sg_ingress"},
	},
}

// viewsFor resolves the declared views for a (cloud, resource_type) pair.
func viewsFor(cloudID, resourceType string) (requestView, bool) {
	types, ok := viewRegistry[cloudID]
	if !ok {
		return requestView{}, false
	}
	v, ok := types[resourceType]
	return v, ok
}

// SupportedClouds lists the cloud identifiers the registry knows about.
func SupportedClouds() []string {
	out := make([]string, 0, len(viewRegistry))
	for c := range viewRegistry {
		out = append(out, c)
	}
	return out
}
