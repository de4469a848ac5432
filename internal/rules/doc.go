// Package rules implements the six design-quality rules and their fixed
// weighting.
//
// Each rule owns a cap and a per-issue penalty. Its score is the cap minus
// penalty times issue count, floored at zero:
//
//	alignment       40  (3 per issue)
//	spacing         35  (2 per issue)
//	typography      30  (5 per issue)
//	responsiveness  25  (8 per issue)
//	accessibility   35  (4 per issue)
//	performance     25  (5 per issue)
//
// Rules are stateless and only read the shared Input.
package rules
