// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package prbsim is a naive gate-level simulator used to model the devices
checked against the PRBS and stochastic-computing golden models of the lfsr, sc
and oracle packages.

Parts are described by a PartSpec and composed into chips with Chip. A Circuit
steps every mounted component once per simulation step, reading wire states
from the previous step and writing the next ones, so that each component adds
one step of propagation delay. A clock cycle is SPC() steps long and clocked
parts latch their inputs on the first step of a cycle (see AtTick).

Ready to use parts live in the hwlib package, the devices under test in the dut
package and the lock-step verification bench in hwtest.
*/
package prbsim
