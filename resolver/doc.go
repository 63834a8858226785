// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

/*
Package resolver implements a simple limiting DNS client-request execution
pool used for resolving target host names before probing them. Please note
that the A/AAAA queries for a single name are not concurrent.

Usage

	pool, err := resolver.FromResolvConf(
	    context.Background(),
	    4,                  // number of parallel DNS connections and thus workers
	    "/etc/resolv.conf", // where to find the name server and search list
	)
	addrs, err := pool.Resolve(ctx, "foobar.example.org", types.ForceV4)
	pool.Submit(func(conn *dns.Conn){
	    // do something with the DNS connection
	})
	pool.StopWait()

Names that DNS cannot resolve, such as those only listed in /etc/hosts, are
resolved by the [System] resolver instead, unless [WithoutFallback] is
specified.

# Acknowledgements

Under its hood, [Pool] leverages [gammazero/workerpool] as the limiting
goroutine pool and [miekg/dns] for talking DNS.

[gammazero/workerpool]: https://github.com/gammazero/workerpool
[miekg/dns]: https://github.com/miekg/dns
*/
package resolver
