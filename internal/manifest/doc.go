// Package manifest loads declarative route tables.
//
// A manifest is YAML (or JSON) describing routes, the components they
// render and the behavior of their guards:
//
//	routes:
//	  - path: /
//	    name: home
//	    component: Home
//	  - path: /admin
//	    component: Admin
//	    beforeEnter: redirect:/login
//	  - path: /users/:id:int
//	    name: user
//	    component:
//	      name: User
//	      props: [id]
//	      lazy: true
//	      beforeRouteLeave: [deny]
//	    props: true
//	    children:
//	      - path: posts
//	        component: Posts
//
// Guard behaviors are allow, deny, fail:<message>, redirect:<path>,
// panic:<message> and delay:<duration> (proceeds after the delay).
//
// Sources are file paths or s3://bucket/key URLs.
package manifest
