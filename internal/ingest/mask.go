package ingest

import (
	"regexp"
	"strings"
)

var (
	ipv6Pattern = regexp.MustCompile(`\b[0-9a-fA-F:]+:[0-9a-fA-F:]+\b`)
	ipv4Pattern = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	uuidPattern = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)

	timestampPattern     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?\b`)
	unixTimestampPattern = regexp.MustCompile(`\b\d{10,13}\b`)

	hexPattern     = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
	longHexPattern = regexp.MustCompile(`\b[0-9a-fA-F]{16,}\b`)

	urlPattern   = regexp.MustCompile(`\bhttps?://[a-zA-Z0-9.-]+[a-zA-Z0-9/._?=&-]*\b`)
	emailPattern = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)

	// k8sPodPattern matches pod names (<deployment>-<replicaset-hash>-<pod-hash>),
	// e.g. nginx-deployment-66b6c48dd5-8w7xz. Checked before
	// k8sReplicaSetPattern since a pod name is a superset match.
	k8sPodPattern        = regexp.MustCompile(`\b[a-z0-9-]+-[a-z0-9]{8,10}-[a-z0-9]{5}\b`)
	k8sReplicaSetPattern = regexp.MustCompile(`\b[a-z0-9-]+-[a-z0-9]{8,10}\b`)
)

// MaskKubernetesNames replaces dynamic Kubernetes pod/replicaset names
// with a <K8S_NAME> placeholder.
func MaskKubernetesNames(s string) string {
	s = k8sPodPattern.ReplaceAllString(s, "<K8S_NAME>")
	s = k8sReplicaSetPattern.ReplaceAllString(s, "<K8S_NAME>")
	return s
}

// MaskDynamicValues collapses common volatile substrings (IPs, UUIDs,
// timestamps, hex blobs, URLs, emails, Kubernetes resource names) in a
// generator-returned pattern string onto stable placeholders, before
// the pattern's remaining literal text is split into fragments (§4.7
// Validation). Without this, two otherwise-identical templates that
// differ only in an embedded IP or pod name would derive disjoint
// fragment sets and never collapse into one template.
func MaskDynamicValues(pattern string) string {
	pattern = ipv6Pattern.ReplaceAllString(pattern, "<IP>")
	pattern = ipv4Pattern.ReplaceAllString(pattern, "<IP>")
	pattern = uuidPattern.ReplaceAllString(pattern, "<UUID>")
	pattern = timestampPattern.ReplaceAllString(pattern, "<TIMESTAMP>")
	pattern = unixTimestampPattern.ReplaceAllString(pattern, "<TIMESTAMP>")
	pattern = hexPattern.ReplaceAllString(pattern, "<HEX>")
	pattern = longHexPattern.ReplaceAllString(pattern, "<HEX>")
	pattern = urlPattern.ReplaceAllString(pattern, "<URL>")
	pattern = emailPattern.ReplaceAllString(pattern, "<EMAIL>")
	pattern = MaskKubernetesNames(pattern)
	return strings.TrimSpace(pattern)
}
