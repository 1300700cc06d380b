/*
Package query models structured search requests as a closed recursive tree.

A tree is built from decoded JSON with FromValue or Parse and is made of three node
kinds: Mapping (objects), Sequence (arrays) and Scalar (leaves, including null).
Mediation code matches on the concrete node type instead of poking at untyped maps,
and trees encode back to JSON with sorted keys so the bodies sent to the backend are
deterministic.
*/
package query
