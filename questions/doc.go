// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package questions provides named question sets.

Sets come from the built-in Default catalog or from a YAML file:

	question_sets:
	  retrospective:
	    - What went well this sprint?
	    - What could be improved?

Moderators can also pass their own with `start custom "q1" "q2"`; those are
extracted by ParseCustom and never stored in a Catalog.
*/
package questions
