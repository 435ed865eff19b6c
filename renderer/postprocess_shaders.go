package renderer

// fullscreenVS draws a single triangle that covers the viewport, driven by
// gl_VertexID so no vertex buffer is needed.
const fullscreenVS = `
#version 410 core
out vec2 TexCoords;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    TexCoords   = pos[gl_VertexID] * 0.5 + 0.5;
}
`

// blurFS is one axis of a separable 9-tap Gaussian.
const blurFS = `
#version 410 core
in  vec2 TexCoords;
out vec4 FragColor;

uniform sampler2D image;
uniform bool      horizontal;

const float weight[5] = float[](0.2270270270, 0.1945945946, 0.1216216216, 0.0540540541, 0.0162162162);

void main() {
    vec2 texel  = 1.0 / vec2(textureSize(image, 0));
    vec2 dir    = horizontal ? vec2(texel.x, 0.0) : vec2(0.0, texel.y);
    vec3 result = texture(image, TexCoords).rgb * weight[0];
    for (int i = 1; i < 5; ++i) {
        result += texture(image, TexCoords + dir * float(i)).rgb * weight[i];
        result += texture(image, TexCoords - dir * float(i)).rgb * weight[i];
    }
    FragColor = vec4(result, 1.0);
}
`

// compositeFS adds the blurred bright pass to the scene, tone maps and
// gamma corrects. toneMapper 0 is Reinhard, 1 is exposure.
const compositeFS = `
#version 410 core
in  vec2 TexCoords;
out vec4 FragColor;

uniform sampler2D scene;
uniform sampler2D bloomBlur;
uniform bool      hdr;
uniform bool      bloom;
uniform float     exposure;
uniform int       toneMapper;
uniform float     gamma;

void main() {
    vec3 color = texture(scene, TexCoords).rgb;
    if (bloom) {
        color += texture(bloomBlur, TexCoords).rgb;
    }
    if (hdr) {
        if (toneMapper == 0) {
            color = color * exposure;
            color = color / (color + vec3(1.0));
        } else {
            color = vec3(1.0) - exp(-color * exposure);
        }
    }
    FragColor = vec4(pow(color, vec3(1.0 / gamma)), 1.0);
}
`
